// Command safe-config inspects and edits an encrypted settings store from
// the shell.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	mode := os.Args[1]
	args := os.Args[2:]

	var err error
	switch mode {
	case "list":
		err = runListMode(args)
	case "get":
		err = runGetMode(args)
	case "set":
		err = runSetMode(args)
	case "delete":
		err = runDeleteMode(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode: %s\n", mode)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: safe-config <mode> [options]

Modes:
  list     Print every stored key and value
  get      Print one value
  set      Store one value and save
  delete   Remove one key and save

Run 'safe-config <mode> -h' for mode-specific options.
`)
}

func runListMode(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	opts := &ListOptions{}
	addStoreFlags(fs, &opts.Store)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return RunList(opts, os.Stdout)
}

func runGetMode(args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	opts := &GetOptions{}
	addStoreFlags(fs, &opts.Store)
	fs.StringVar(&opts.Key, "key", "", "Setting key to read")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return RunGet(opts, os.Stdout)
}

func runSetMode(args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	opts := &SetOptions{}
	addStoreFlags(fs, &opts.Store)
	fs.StringVar(&opts.Key, "key", "", "Setting key to write")
	fs.StringVar(&opts.Type, "type", "string", "Value type: string, int, float, bool, bytes, time")
	fs.StringVar(&opts.Value, "value", "", "Value literal; bytes are base64, times are RFC 3339")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return RunSet(opts)
}

func runDeleteMode(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	opts := &DeleteOptions{}
	addStoreFlags(fs, &opts.Store)
	fs.StringVar(&opts.Key, "key", "", "Setting key to remove")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return RunDelete(opts)
}
