package config

import (
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
)

type Config struct {
	Addr  string
	DBUrl string
	Seeds []string
	Debug bool
}

// seedFiles collects repeated -seed flags.
type seedFiles []string

func (s *seedFiles) String() string {
	return strings.Join(*s, ",")
}

func (s *seedFiles) Set(path string) error {
	*s = append(*s, path)
	return nil
}

func ParseFlags() (Config, error) {
	return Parse(flag.CommandLine, nil)
}

// Parse reads the configuration from args using fs. A nil args means the
// process arguments.
func Parse(fs *flag.FlagSet, args []string) (cfg Config, err error) {
	var host string
	fs.StringVar(&host, "host", "0.0.0.0", "listen host name (default 0.0.0.0)")
	var port uint
	fs.UintVar(&port, "port", 80, "listen port number (default 80)")
	fs.StringVar(&cfg.DBUrl, "db-url", "qsurvey.sqlite", "path to SQLite3 DB file (default qsurvey.sqlite)")
	var seeds seedFiles
	fs.Var(&seeds, "seed", "survey definition file (.json, .yaml) to load at startup, may be repeated")
	fs.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")

	if args == nil {
		err = fs.Parse(os.Args[1:])
	} else {
		err = fs.Parse(args)
	}
	if err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.Seeds = seeds
	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
