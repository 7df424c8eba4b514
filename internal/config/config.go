package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings shared by the server and console binaries.
type Config struct {
	Addr            string
	AllowOrigins    string
	WhiteName       string
	BlackName       string
	ReadBufferSize  int
	WriteBufferSize int
}

// Load parses args (without the program name). Every flag defaults to its
// SHADOWCHESS_* environment variable when that is set.
func Load(name string, args []string) (Config, error) {
	readBuffer, err := getenvInt("SHADOWCHESS_WS_READ_BUFFER", 1024)
	if err != nil {
		return Config{}, err
	}
	writeBuffer, err := getenvInt("SHADOWCHESS_WS_WRITE_BUFFER", 1024)
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var cfg Config
	fs.StringVar(&cfg.Addr, "addr", getenv("SHADOWCHESS_ADDR", ":3000"), "listen address")
	fs.StringVar(&cfg.AllowOrigins, "allow-origins", getenv("SHADOWCHESS_ALLOW_ORIGINS", "http://localhost:5173"), "comma-separated CORS origins")
	fs.StringVar(&cfg.WhiteName, "white", getenv("SHADOWCHESS_WHITE_NAME", "White"), "default name of the white player")
	fs.StringVar(&cfg.BlackName, "black", getenv("SHADOWCHESS_BLACK_NAME", "Black"), "default name of the black player")
	fs.IntVar(&cfg.ReadBufferSize, "ws-read-buffer", readBuffer, "websocket read buffer size")
	fs.IntVar(&cfg.WriteBufferSize, "ws-write-buffer", writeBuffer, "websocket write buffer size")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.WhiteName) == "" || strings.TrimSpace(c.BlackName) == "" {
		return fmt.Errorf("%w: player names must not be blank", ErrInvalidConfig)
	}
	if c.ReadBufferSize <= 0 || c.WriteBufferSize <= 0 {
		return fmt.Errorf("%w: websocket buffers must be positive (read %d, write %d)", ErrInvalidConfig, c.ReadBufferSize, c.WriteBufferSize)
	}
	return nil
}

// Origins splits AllowOrigins into the list the websocket upgrader expects.
func (c Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, v)
	}
	return n, nil
}
