package minwasm

import (
	"go.uber.org/zap"

	"github.com/tetratelabs/minwasm/wasm/interpreter"
)

// RuntimeConfig controls runtime behavior, with the default implementation as NewRuntimeConfig
type RuntimeConfig struct {
	logger           *zap.Logger
	stackHeightLimit int
}

// defaultConfig helps avoid copy/pasting the wrong defaults.
var defaultConfig = &RuntimeConfig{
	logger:           zap.NewNop(),
	stackHeightLimit: interpreter.DefaultStackHeightLimit,
}

// clone ensures all fields are coped even if nil.
func (c *RuntimeConfig) clone() *RuntimeConfig {
	return &RuntimeConfig{
		logger:           c.logger,
		stackHeightLimit: c.stackHeightLimit,
	}
}

// NewRuntimeConfig returns the default configuration: no logging and an operand stack of at most
// interpreter.DefaultStackHeightLimit values.
func NewRuntimeConfig() *RuntimeConfig {
	return defaultConfig.clone()
}

// WithLogger sets the logger used for debug messages such as decoded modules, invocations and traps. Defaults to
// zap.NewNop if nil.
func (c *RuntimeConfig) WithLogger(logger *zap.Logger) *RuntimeConfig {
	if logger == nil {
		logger = zap.NewNop()
	}
	ret := c.clone()
	ret.logger = logger
	return ret
}

// WithStackHeightLimit sets the maximum count of values on the operand stack of a function call. Pushing past it traps
// with wasm.ErrStackOverflow. Values less than one restore the default, interpreter.DefaultStackHeightLimit.
func (c *RuntimeConfig) WithStackHeightLimit(stackHeightLimit int) *RuntimeConfig {
	if stackHeightLimit < 1 {
		stackHeightLimit = interpreter.DefaultStackHeightLimit
	}
	ret := c.clone()
	ret.stackHeightLimit = stackHeightLimit
	return ret
}
