package middleware

import "github.com/danielgtaylor/huma/v2"

// Container accumulates the middleware chain for the next handler being
// wired. GetAllAndClear hands the chain over and resets, so each handler
// declares its own stack.
type Container struct {
	chain huma.Middlewares
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Add(mw func(huma.Context, func(huma.Context))) {
	c.chain = append(c.chain, mw)
}

func (c *Container) GetAllAndClear() huma.Middlewares {
	chain := c.chain
	c.chain = nil
	return chain
}
