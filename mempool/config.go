package mempool

import (
	"fmt"

	"github.com/joshuapare/quadpool/internal/arena"
)

// Kind selects the locking discipline of a pool.
type Kind uint8

const (
	// KindKernel guards every elementary step with its own short lock window.
	KindKernel Kind = iota
	// KindUser holds one mutex for each whole alloc or free call.
	KindUser
)

// String returns the flag spelling of k.
func (k Kind) String() string {
	switch k {
	case KindKernel:
		return "kernel"
	case KindUser:
		return "user"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind parses "kernel" or "user".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "kernel", "":
		return KindKernel, nil
	case "user":
		return KindUser, nil
	default:
		return KindKernel, fmt.Errorf("%w: unknown kind %q", ErrBadConfig, s)
	}
}

const (
	// MaxLevels is the deepest level count a pool may have.
	// The block header stores the level in 4 bits.
	MaxLevels = 16

	// DefaultMaxRetries bounds ErrAgain restarts when Config.MaxRetries is 0.
	DefaultMaxRetries = 64
)

// Config describes one pool. The arena holds NumMax blocks of MaxBlockSize
// bytes; NumLevels size classes are derived from MaxBlockSize by successive
// division by four.
type Config struct {
	// Name for this pool (logs, stats)
	Name string

	MaxBlockSize int // size of a level-0 block in bytes
	NumMax       int // number of level-0 blocks
	NumLevels    int // number of size classes, >= 1

	Kind Kind

	// Arena backing and whether mapped pages are locked into RAM
	Backing   arena.Backing
	LockPages bool

	// MaxRetries bounds ErrAgain restarts per allocation (0 = DefaultMaxRetries)
	MaxRetries int
}

// Predefined configurations.
var (
	// ConfigTiny: 4 x 64B blocks, levels 64/16/4.
	ConfigTiny = Config{
		Name:         "Tiny",
		MaxBlockSize: 64,
		NumMax:       4,
		NumLevels:    3,
	}

	// ConfigSmall: 16 x 256B blocks, levels 256/64/16/4.
	ConfigSmall = Config{
		Name:         "Small",
		MaxBlockSize: 256,
		NumMax:       16,
		NumLevels:    4,
	}

	// ConfigMedium: 8 x 4KB blocks, levels 4096/1024/256/64/16.
	ConfigMedium = Config{
		Name:         "Medium",
		MaxBlockSize: 4096,
		NumMax:       8,
		NumLevels:    5,
	}

	// ConfigLarge: 16 x 64KB blocks, levels 64K down to 16B.
	ConfigLarge = Config{
		Name:         "Large",
		MaxBlockSize: 65536,
		NumMax:       16,
		NumLevels:    7,
	}

	// ConfigDefault is used when callers have no better idea.
	ConfigDefault = ConfigMedium
)

// ArenaSize returns NumMax * MaxBlockSize.
func (c Config) ArenaSize() int {
	return c.NumMax * c.MaxBlockSize
}

// retries returns the effective ErrAgain restart bound.
func (c Config) retries() int {
	if c.MaxRetries <= 0 {
		return DefaultMaxRetries
	}
	return c.MaxRetries
}

// Validate reports whether c describes a pool that can be laid out.
func (c Config) Validate() error {
	_, err := computeLayout(c)
	return err
}
