package layout

// ModalWidth is percent of the terminal width, held between the modal
// bounds and two columns clear of each terminal edge.
func ModalWidth(termWidth, percent int, cfg ModalConfig) int {
	w := min(max(termWidth*percent/100, cfg.MinWidth), cfg.MaxWidth, termWidth-4)
	return max(w, 1)
}

// ScrollWindow returns the bounds [start, end) of the rows to draw when a
// list of total rows has room for visible of them. The list scrolls only
// as far as needed to keep cursor on screen.
func ScrollWindow(visible, cursor, total int) (start, end int) {
	if total <= visible {
		return 0, total
	}
	if visible <= 0 {
		return 0, 0
	}
	start = max(cursor-visible+1, 0)
	return start, min(start+visible, total)
}
