package command

// DefaultPrefix is used when neither a static prefix nor a custom prefix
// provider is configured.
const DefaultPrefix = "!"

// PrefixProvider resolves the command prefix for one message, allowing
// per-guild or per-chat prefixes.
type PrefixProvider[M any] interface {
	PrefixFor(message M) string
}

// PrefixProviderFunc adapts a function to a PrefixProvider.
type PrefixProviderFunc[M any] func(message M) string

func (f PrefixProviderFunc[M]) PrefixFor(message M) string { return f(message) }
