package services

// NoteMetrics учитывает результаты операций над заметками.
type NoteMetrics interface {
	NoteOperation(operation string, err error)
}
