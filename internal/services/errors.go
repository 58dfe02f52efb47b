package services

import (
	"errors"
	"fmt"
)

var (
	ErrNoReadableText    = errors.New("no readable text found in the file")
	ErrAIRequest         = errors.New("could not get AI response")
	ErrEmptyAIResponse   = errors.New("AI text processing returned empty response")
	ErrInvalidText       = errors.New("no valid text provided")
	ErrSpeechUnavailable = errors.New("speech synthesis is not configured")
)

// EmptyResponseError is returned when the model answers an AI action with blank text.
type EmptyResponseError struct {
	Action         Action
	ExtractedChars int
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("AI text processing for '%s' returned empty response. Original extracted text length: %d", e.Action, e.ExtractedChars)
}

func (e *EmptyResponseError) Is(target error) bool {
	return target == ErrEmptyAIResponse
}
