package errors

// ErrorCode identifies the failure class of an AppError.
type ErrorCode int

const (
	ErrorCode_INTERNAL ErrorCode = iota
	ErrorCode_INPUT
	ErrorCode_TRANSCRIPTION
	ErrorCode_ANALYSIS
	ErrorCode_STORAGE
)

// String returns the canonical name of the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrorCode_INPUT:
		return "INPUT"
	case ErrorCode_TRANSCRIPTION:
		return "TRANSCRIPTION"
	case ErrorCode_ANALYSIS:
		return "ANALYSIS"
	case ErrorCode_STORAGE:
		return "STORAGE"
	default:
		return "INTERNAL"
	}
}

// Pipeline stage names, attached to errors so the caller can report
// which stage failed for which file.
const (
	StageInput         = "input"
	StageTranscription = "transcription"
	StageAnalysis      = "analysis"
	StageStorage       = "storage"
)
