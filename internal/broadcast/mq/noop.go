package mq

import "context"

type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (*Noop) Publish(context.Context, string, string, any) error { return nil }
func (*Noop) Close() error                                      { return nil }
