package usage

// Config holds the global kill-switch for limit enforcement.
// With Enforced false every check passes while usage is still recorded,
// which allows rolling the gate out (or backing it out) without touching
// calling code.
type Config struct {
	Enforced bool `env:"USAGE_LIMITS_ENFORCED" envDefault:"true"`
}
