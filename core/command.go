package core

import (
	"errors"
	"strings"
	"sync"
)

// ErrUnknownCommand is returned when a dispatched ID has no handler
var ErrUnknownCommand = errors.New("unknown command")

// CommandHandler handles one command.
// The handler decodes its own arguments and advances the data pointer past them.
type CommandHandler func(data *[]byte) error

// Command is an entry of the command dictionary
type Command struct {
	ID      uint16
	Name    string
	Format  string // argument names, e.g. "panel=%c color=%u"
	Handler CommandHandler
}

// CommandRegistry assigns sequential IDs to commands and responses and
// serializes them into the dictionary the host retrieves with identify
type CommandRegistry struct {
	mu         sync.RWMutex
	commands   map[uint16]*Command
	nameToID   map[string]uint16
	nextID     uint16
	dictionary string
}

// NewCommandRegistry creates an empty registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[uint16]*Command),
		nameToID: make(map[string]uint16),
	}
}

// Register adds a command and returns its ID.
// Registering an existing name returns the original ID.
func (r *CommandRegistry) Register(name string, format string, handler CommandHandler) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, exists := r.nameToID[name]; exists {
		return id
	}

	id := r.nextID
	r.nextID++

	r.commands[id] = &Command{
		ID:      id,
		Name:    name,
		Format:  format,
		Handler: handler,
	}
	r.nameToID[name] = id
	r.rebuildDictionary()

	return id
}

// RegisterResponse registers a message sent from the clock to the host (no handler)
func (r *CommandRegistry) RegisterResponse(name string, format string) uint16 {
	return r.Register(name, format, nil)
}

// GetCommand retrieves a command by ID
func (r *CommandRegistry) GetCommand(id uint16) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

// Lookup returns the ID registered for name
func (r *CommandRegistry) Lookup(name string) (uint16, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.nameToID[name]
	return id, ok
}

// Count returns the number of registered entries
func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch calls the handler registered for cmdID
func (r *CommandRegistry) Dispatch(cmdID uint16, data *[]byte) error {
	cmd, ok := r.GetCommand(cmdID)
	if !ok || cmd.Handler == nil {
		return Wrap(ErrUnknownCommand, errors.New("id "+Itoa(int(cmdID))))
	}
	return cmd.Handler(data)
}

// GetDictionary returns the dictionary text: one "name format" line per ID, in ID order
func (r *CommandRegistry) GetDictionary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dictionary
}

// Must be called with lock held
func (r *CommandRegistry) rebuildDictionary() {
	var b strings.Builder
	for i := uint16(0); i < r.nextID; i++ {
		cmd, ok := r.commands[i]
		if !ok {
			continue
		}
		b.WriteString(cmd.Name)
		if cmd.Format != "" {
			b.WriteByte(' ')
			b.WriteString(cmd.Format)
		}
		b.WriteByte('\n')
	}
	r.dictionary = b.String()
}

// ParseDictionary maps command names to IDs from dictionary text
func ParseDictionary(dict string) map[string]uint16 {
	ids := make(map[string]uint16)
	for i, line := range strings.Split(strings.TrimRight(dict, "\n"), "\n") {
		name, _, _ := strings.Cut(line, " ")
		if name != "" {
			ids[name] = uint16(i)
		}
	}
	return ids
}
