package voice

import "fmt"

// Provider error codes.
const (
	CodeNoSpeech             = "no-speech"
	CodeAudioCapture         = "audio-capture"
	CodeNotAllowed           = "not-allowed"
	CodePermissionDenied     = "permission-denied"
	CodeNetwork              = "network"
	CodeAborted              = "aborted"
	CodeServiceNotAllowed    = "service-not-allowed"
	CodeLanguageNotSupported = "language-not-supported"
)

// RecognitionError is a failure reported by the recognizer.
type RecognitionError struct {
	Code string
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("speech recognition error: %s", e.Code)
}

// Message maps a provider code to the text shown to the user. No-speech
// has no message: the session restarts quietly.
func Message(code string) string {
	switch code {
	case CodeNoSpeech:
		return ""
	case CodeAudioCapture:
		return "Can't find your microphone. Check if it's plugged in or used by another app."
	case CodeNotAllowed, CodePermissionDenied:
		return "Microphone access is blocked. Please enable it in your browser settings."
	case CodeNetwork:
		return "Connection issue. Voice input needs a stable internet connection."
	case CodeAborted:
		return "Listening was interrupted. Please try again."
	case CodeServiceNotAllowed:
		return "Speech service is currently unavailable. Please try again later."
	case CodeLanguageNotSupported:
		return "Your browser doesn't support speech recognition in this language."
	default:
		return "Something went wrong with the microphone. Please try again."
	}
}
