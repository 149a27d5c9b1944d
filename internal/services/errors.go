package services

import "errors"

var (
	errBadSubject       = errors.New("subject_id must be a uuid")
	errMissingTimestamp = errors.New("occurred_at required")
	errFutureTimestamp  = errors.New("occurred_at is in the future")
	errNegativeDuration = errors.New("duration_seconds must not be negative")
	errBadMetadata      = errors.New("metadata must be valid JSON")
)
