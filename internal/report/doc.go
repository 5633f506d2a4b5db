// Package report renders the driver closing report as a colour-coded
// .xlsx spreadsheet: yellow rows for active drivers, green for completed,
// red for cancelled. One file per day, rewritten on each request.
package report
