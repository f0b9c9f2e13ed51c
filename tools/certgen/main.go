// Package main writes a development CA and a server certificate for the
// stub backend into a directory (default "certs").
//
//	go run ./tools/certgen -dir certs -hosts localhost,127.0.0.1
//	go run ./cmd/server -secret dev -tls-cert certs/server.crt -tls-key certs/server.key
//	go run ./cmd/client -url https://localhost:8000/api/v1 -ca certs/ca.crt
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/GophTube/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server names and addresses")
	ttl := flag.Duration("ttl", 365*24*time.Hour, "certificate lifetime")
	flag.Parse()

	if err := certgen.WriteBundle(*dir, splitHosts(*hosts), *ttl); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Certificates generated into %s\n", *dir)
}

func splitHosts(s string) []string {
	var out []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
