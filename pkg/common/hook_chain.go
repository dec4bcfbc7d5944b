package common

// HookChain is an ordered set of pre- and post-hooks.
type HookChain struct {
	Pre  []PreHook
	Post []PostHook
}

// NewHookChain creates a chain from the given hooks.
func NewHookChain(pre []PreHook, post []PostHook) HookChain {
	return HookChain{Pre: pre, Post: post}
}

// Append returns a new chain with other's hooks after c's.
func (c HookChain) Append(other HookChain) HookChain {
	pre := make([]PreHook, 0, len(c.Pre)+len(other.Pre))
	pre = append(append(pre, c.Pre...), other.Pre...)
	post := make([]PostHook, 0, len(c.Post)+len(other.Post))
	post = append(append(post, c.Post...), other.Post...)
	return HookChain{Pre: pre, Post: post}
}

// Prepend returns a new chain with other's hooks before c's.
func (c HookChain) Prepend(other HookChain) HookChain {
	return other.Append(c)
}

// Shared returns the hooks of c that are shared with child routes.
func (c HookChain) Shared() HookChain {
	var out HookChain
	for _, h := range c.Pre {
		if h.ShareWithChildRoutes {
			out.Pre = append(out.Pre, h)
		}
	}
	for _, h := range c.Post {
		if h.ShareWithChildRoutes {
			out.Post = append(out.Post, h)
		}
	}
	return out
}

// Empty reports whether the chain has no hooks.
func (c HookChain) Empty() bool {
	return len(c.Pre) == 0 && len(c.Post) == 0
}

// PreNames returns the names of the pre-hooks in order.
func (c HookChain) PreNames() []string {
	names := make([]string, len(c.Pre))
	for i, h := range c.Pre {
		names[i] = h.Name
	}
	return names
}

// PostNames returns the names of the post-hooks in order.
func (c HookChain) PostNames() []string {
	names := make([]string, len(c.Post))
	for i, h := range c.Post {
		names[i] = h.Name
	}
	return names
}
