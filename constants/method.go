package constants

// ScanMethod names the pipeline that produced a contact.
type ScanMethod string

const (
	MethodHeuristic ScanMethod = "HEURISTIC" // offline regex + scoring parser
	MethodAI        ScanMethod = "AI"        // two-stage provider extraction
)

// ParseScanMethod accepts the CLI/RPC spellings ("ai", "heuristic", "offline").
func ParseScanMethod(s string) (ScanMethod, bool) {
	switch s {
	case "ai", "AI", "online":
		return MethodAI, true
	case "heuristic", "HEURISTIC", "offline", "":
		return MethodHeuristic, true
	default:
		return "", false
	}
}
