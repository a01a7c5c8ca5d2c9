// Package providers defines the text generation capability used by the
// remote policy parser and the shared HTTP plumbing for vendor backends.
//
// Backends live in subpackages (openai, anthropic, gemini) and all return
// errors from the taxonomy in this package, so callers can branch with
// errors.As regardless of vendor:
//
//	var rl *providers.RateLimitError
//	if errors.As(err, &rl) {
//	    // back off for rl.RetryAfter
//	}
package providers
