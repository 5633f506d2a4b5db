package bot

// helpText is the command reference sent in reply to /help.
const helpText = `[AJUDA] - Comandos Disponiveis:

/login <SENHA>
  Realiza login no sistema (necessário para usar os comandos).
  Exemplo: /login MinhaS3nh4

/add <LH> <NOME> <PLACA>
  Adiciona um novo motorista ao sistema.
  Exemplo: /add LH1234567890123 Joao Silva ABC1234

/placa <PLACA>
  Busca motorista pela placa (7 caracteres).
  Exemplo: /placa ABC1234

/lh <LH>
  Busca motorista pela LH (13 caracteres).
  Exemplo: /lh LH1234567890123

/remove <LH>
  Remove motorista do sistema (marca como cancelado).
  Exemplo: /remove LH1234567890123

/concluidos <LH>
  Marca motorista como concluido (verde na planilha).
  Exemplo: /concluidos LH1234567890123

/cancelados <LH>
  Marca motorista como cancelado (vermelho na planilha).
  Exemplo: /cancelados LH1234567890123

/planilha <SENHA>
  Gera e envia planilha de fechamento com cores.
  Requer senha de segurança.
  - Amarelo = Ativo
  - Verde = Concluido
  - Vermelho = Cancelado

/help
  Mostra esta mensagem de ajuda.

Duvidas? Entre em contato com o suporte!`
