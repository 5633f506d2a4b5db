package ownership

// Entry tracks one authenticated operator and the driver keys they created.
// The JSON shape matches the on-disk usuarios file.
type Entry struct {
	OperatorID      string   `json:"chat_id"`
	AuthenticatedAt string   `json:"data_autenticacao"`
	OwnedKeys       []string `json:"motoristas"`
}

// owns reports whether the entry contains the given key.
func (e *Entry) owns(key string) bool {
	for _, k := range e.OwnedKeys {
		if k == key {
			return true
		}
	}
	return false
}
