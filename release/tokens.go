package release

// EstimateTokens approximates the token count of s at roughly 3.5 characters
// per token. Any non-empty string counts as at least one token.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	n := len(s) * 10 / 35
	if n < 1 {
		return 1
	}
	return n
}
