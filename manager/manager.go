// Package manager implements the command manager (C8): a process-wide
// registry of compiled commands keyed by hash, their shortcut tables, a
// max-count cap, and an in-process LRU of recent parse outcomes for
// optional memoization. Ground: `sync.RWMutex` + map idiom from the
// teacher's core/decorator/registry.go "database/sql driver
// registration" pattern, applied here to command registration instead
// of decorator registration.
package manager

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/alconna-go/alconna/analyser"
	"github.com/alconna-go/alconna/argv"
	"github.com/alconna-go/alconna/errs"
	"github.com/alconna-go/alconna/shortcut"
)

// Command is one registered, compiled command: its analyser, an optional
// Argv template, and the namespace it lives under.
type Command struct {
	Hash      string
	Namespace string
	Name      string
	Analyser  *analyser.Analyser
	ArgvTmpl  *argv.Argv
	Shortcuts *shortcut.Table
}

// recentKey is the memoization key for one parse outcome: the command
// hash plus a hash of the token sequence parsed.
type recentKey struct {
	cmdHash  string
	dataHash string
}

// Manager holds every registered Command plus a shared LRU of recent
// parse outcomes. Safe for concurrent use: registration is guarded by
// mu, and the LRU has its own internal locking.
type Manager struct {
	mu       sync.RWMutex
	commands map[string]*Command
	byNS     map[string][]string // namespace -> command hashes, registration order

	maxCount int
	recent   *lru.Cache[recentKey, *analyser.Outcome]
}

// New builds a Manager. maxCount caps the number of commands registrable
// at once (0 = unlimited); recentSize bounds the parse-memoization LRU
// (0 disables memoization).
func New(maxCount, recentSize int) (*Manager, error) {
	m := &Manager{
		commands: map[string]*Command{},
		byNS:     map[string][]string{},
		maxCount: maxCount,
	}
	if recentSize > 0 {
		cache, err := lru.New[recentKey, *analyser.Outcome](recentSize)
		if err != nil {
			return nil, err
		}
		m.recent = cache
	}
	return m, nil
}

// Register adds or updates cmd under namespace. Returns ExceedMaxCount
// if the manager's cap would be exceeded by a brand-new registration.
func (m *Manager) Register(cmd *Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.commands[cmd.Hash]
	if !exists && m.maxCount > 0 && len(m.commands) >= m.maxCount {
		return errs.NewExceedMaxCount("command manager at capacity (%d)", m.maxCount)
	}
	m.commands[cmd.Hash] = cmd
	if !exists {
		m.byNS[cmd.Namespace] = append(m.byNS[cmd.Namespace], cmd.Hash)
	}
	return nil
}

// Unregister removes a command by hash.
func (m *Manager) Unregister(hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd, ok := m.commands[hash]
	if !ok {
		return
	}
	delete(m.commands, hash)
	hashes := m.byNS[cmd.Namespace]
	for i, h := range hashes {
		if h == hash {
			m.byNS[cmd.Namespace] = append(hashes[:i], hashes[i+1:]...)
			break
		}
	}
}

// Resolve returns the Argv template registered for hash.
func (m *Manager) Resolve(hash string) (*argv.Argv, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cmd, ok := m.commands[hash]
	if !ok {
		return nil, false
	}
	return cmd.ArgvTmpl, true
}

// Require returns the compiled Analyser registered for hash.
func (m *Manager) Require(hash string) (*analyser.Analyser, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cmd, ok := m.commands[hash]
	if !ok {
		return nil, false
	}
	return cmd.Analyser, true
}

// Shortcut adds, updates, or (when delete is true) removes a shortcut
// for cmd. Ground: SPEC_FULL.md §4.8a / `Alconna.shortcut`.
func (m *Manager) Shortcut(cmdHash, key string, a shortcut.Args, prefixes []string, del bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd, ok := m.commands[cmdHash]
	if !ok {
		return fmt.Errorf("undefined command: %s", cmdHash)
	}
	if cmd.Shortcuts == nil {
		cmd.Shortcuts = shortcut.New()
	}
	if del {
		cmd.Shortcuts.Delete(key)
		return nil
	}
	cmd.Shortcuts.Add(key, a, prefixes)
	return nil
}

// FindShortcut looks up query against cmd's shortcut table.
func (m *Manager) FindShortcut(cmdHash, query string) (*shortcut.Match, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cmd, ok := m.commands[cmdHash]
	if !ok || cmd.Shortcuts == nil {
		return nil, false
	}
	return cmd.Shortcuts.Find(query)
}

// CachedOutcome returns a memoized parse outcome for (cmdHash, data),
// when the manager was built with a non-zero recentSize and a prior
// parse of the identical token sequence was recorded via Remember.
func (m *Manager) CachedOutcome(cmdHash string, data []any) (*analyser.Outcome, bool) {
	if m.recent == nil {
		return nil, false
	}
	return m.recent.Get(recentKey{cmdHash: cmdHash, dataHash: hashData(data)})
}

// Remember records a parse outcome for later CachedOutcome lookups.
func (m *Manager) Remember(cmdHash string, data []any, outcome *analyser.Outcome) {
	if m.recent == nil {
		return
	}
	m.recent.Add(recentKey{cmdHash: cmdHash, dataHash: hashData(data)}, outcome)
}

func hashData(data []any) string {
	h := fmt.Sprintf("%v", data)
	return h
}

// Broadcast dispatches data against every command registered under
// namespace, returning the first successful Outcome. Ground:
// `CommandManager.broadcast`.
func (m *Manager) Broadcast(namespace string, data []any, separators ...rune) (*Command, *analyser.Outcome, error) {
	m.mu.RLock()
	hashes := append([]string(nil), m.byNS[namespace]...)
	cmds := make([]*Command, 0, len(hashes))
	for _, h := range hashes {
		cmds = append(cmds, m.commands[h])
	}
	m.mu.RUnlock()

	var lastErr error
	for _, cmd := range cmds {
		av := argv.New(separators...)
		av.Build(data)
		out, err := cmd.Analyser.Analyse(av)
		if err == nil {
			return cmd, out, nil
		}
		lastErr = err
	}
	return nil, nil, lastErr
}

// Test dispatches data against every command in namespace and returns
// every Outcome that matched, rather than stopping at the first.
// Ground: `CommandManager.test`.
func (m *Manager) Test(namespace string, data []any, separators ...rune) map[string]*analyser.Outcome {
	m.mu.RLock()
	hashes := append([]string(nil), m.byNS[namespace]...)
	cmds := make([]*Command, 0, len(hashes))
	for _, h := range hashes {
		cmds = append(cmds, m.commands[h])
	}
	m.mu.RUnlock()

	out := map[string]*analyser.Outcome{}
	for _, cmd := range cmds {
		av := argv.New(separators...)
		av.Build(data)
		if res, err := cmd.Analyser.Analyse(av); err == nil {
			out[cmd.Hash] = res
		}
	}
	return out
}

// AllCommandHelp renders a plaintext listing of every registered
// command's header display plus (when non-empty) its description.
// Ground: `CommandManager.all_command_help`.
func (m *Manager) AllCommandHelp(namespace string, describe func(*Command) string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var lines []string
	for _, h := range m.byNS[namespace] {
		cmd := m.commands[h]
		line := cmd.Name
		if describe != nil {
			if d := describe(cmd); d != "" {
				line += " - " + d
			}
		}
		lines = append(lines, line)
	}
	return lines
}
