package extract

import "time"

// Metrics — счётчики пайплайна; реализация в пакете metrics.
type Metrics interface {
	Attempt(strategy, outcome string)
	Structured(path string)
	EmergencyFill(field string)
	ObserveExtraction(start time.Time)
}
