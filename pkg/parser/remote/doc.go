// Package remote compiles policy text with a remote language model.
//
// The system instruction embeds every semantic field path the feasibility
// analyzer understands, the enum vocabularies of the rule model and a set of
// worked examples. The reply is reduced to the first balanced JSON span,
// decoded into an untyped tree and coerced into a rule.PolicyRule.
//
// Parse never retries. Any failure is a *ParseFailure so callers can fall
// back to the dictionary parser:
//
//	r, err := p.Parse(ctx, text)
//	var pf *remote.ParseFailure
//	if errors.As(err, &pf) {
//	    r = dictionary.New().Parse(text)
//	}
package remote
