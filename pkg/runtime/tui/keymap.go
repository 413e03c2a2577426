package tui

// Key binding constants used in handleKey.
const (
	KeyQuit      = "q"
	KeyQuitUpper = "Q"
	KeyCtrlC     = "ctrl+c"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyJ         = "j"
	KeyK         = "k"
	KeyMock      = "m"
	KeyLive      = "l"
	KeyRefetch   = "r"
	KeyReanalyze = "a"
	KeyReport    = "p"
)
