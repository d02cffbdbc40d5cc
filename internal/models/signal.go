package models

// Signal — входящий сигнал от вебхука: действие и инструмент.
type Signal struct {
	Action string
	Symbol string
}
