// Package chain is an append-only, hash-chained audit log of resolved actions,
// deaths and narration.
package chain

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cuihairu/werewolf/internal/ports"
)

type Writer struct {
	mu   sync.Mutex
	f    *os.File
	prev []byte // previous hash
	now  func() time.Time
}

var _ ports.Auditor = (*Writer)(nil)

// NewWriter opens path for appending and continues the chain found in it.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	prev, err := lastHash(path)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, prev: prev, now: time.Now}, nil
}

func (w *Writer) Close() error { return w.f.Close() }

type Event struct {
	Time    time.Time       `json:"time"`
	Kind    string          `json:"kind"`
	GameID  string          `json:"game_id"`
	Payload json.RawMessage `json:"payload"`
	Prev    string          `json:"prev"`
	Hash    string          `json:"hash"`
}

// Record appends one event linked to the previous one.
func (w *Writer) Record(_ context.Context, kind, gameID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", kind, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	ev := Event{Time: w.now().UTC(), Kind: kind, GameID: gameID, Payload: raw, Prev: hex.EncodeToString(w.prev)}
	h := digest(w.prev, ev)
	ev.Hash = hex.EncodeToString(h)
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := w.f.Write(append(b, '\n')); err != nil {
		return err
	}
	w.prev = h
	return nil
}

func digest(prev []byte, ev Event) []byte {
	ev.Hash = ""
	b, _ := json.Marshal(ev)
	h := sha256.Sum256(append(append([]byte(nil), prev...), b...))
	return h[:]
}

func lastHash(path string) ([]byte, error) {
	prev := make([]byte, 32)
	err := scan(path, func(ev Event) error {
		h, err := hex.DecodeString(ev.Hash)
		if err != nil {
			return err
		}
		prev = h
		return nil
	})
	if os.IsNotExist(err) {
		return make([]byte, 32), nil
	}
	return prev, err
}

func scan(path string, fn func(Event) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Verify walks the log and returns the number of valid events. It fails at
// the first broken link.
func Verify(path string) (int, error) {
	prev := make([]byte, 32)
	n := 0
	err := scan(path, func(ev Event) error {
		if ev.Prev != hex.EncodeToString(prev) {
			return fmt.Errorf("event %d: prev mismatch", n+1)
		}
		h := digest(prev, ev)
		if ev.Hash != hex.EncodeToString(h) {
			return fmt.Errorf("event %d: hash mismatch", n+1)
		}
		prev = h
		n++
		return nil
	})
	return n, err
}
