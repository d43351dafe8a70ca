package extract

import (
	"context"
	"errors"
	"sync"
)

type reply struct {
	text  string
	err   error
	panic bool
}

// scriptedEngine отвечает на Transcribe по очереди из replies.
type scriptedEngine struct {
	mu       sync.Mutex
	replies  []reply
	prompts  []string
	complete func(system, user string) (string, error)
}

func (e *scriptedEngine) Transcribe(_ context.Context, _ []byte, prompt string) (string, error) {
	e.mu.Lock()
	i := len(e.prompts)
	e.prompts = append(e.prompts, prompt)
	e.mu.Unlock()
	if i >= len(e.replies) {
		return "", errors.New("no more replies")
	}
	r := e.replies[i]
	if r.panic {
		panic("engine exploded")
	}
	return r.text, r.err
}

func (e *scriptedEngine) Complete(_ context.Context, system, user string) (string, error) {
	if e.complete == nil {
		return "", errors.New("structuring service down")
	}
	return e.complete(system, user)
}

func (e *scriptedEngine) calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.prompts)
}

type memCache struct {
	mu sync.Mutex
	m  map[string]Result
}

func (c *memCache) Find(_ context.Context, hash string) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.m[hash]
	if !ok {
		return nil, errors.New("not found")
	}
	return &r, nil
}

func (c *memCache) Save(_ context.Context, hash string, res Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = map[string]Result{}
	}
	c.m[hash] = res
	return nil
}

const scenarioA = "APELLIDOS Y NOMBRES\nGARCIA LOPEZ JUAN\nDNI 45678912\nFECHA DE NACIMIENTO 15 03 1990\nREPUBLICA DEL PERU"

func value[T any](o Optional[T]) T {
	v, _ := o.Get()
	return v
}
