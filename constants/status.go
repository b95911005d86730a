package constants

// ScanStatus is the canonical status for rows in card_scans.
type ScanStatus string

// Stable values (store these exact strings in DB).
const (
	ScanStatusPendingReview ScanStatus = "PENDING_REVIEW" // fresh scan, user has not confirmed fields
	ScanStatusConfirmed     ScanStatus = "CONFIRMED"      // user reviewed/edited the fields
)
