package main

import (
	"fmt"
	"os"

	"github.com/go-chroma/iccraw"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "iccdump FILE",
	Short: "Print the header, tag directory and raw tag payloads of an ICC profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	profile, err := iccraw.Decode(f, nil)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	fmt.Printf("size: %dB\n", profile.Header.ProfileSize)
	fmt.Printf("version: %s\n", profile.Header.Version)
	fmt.Printf("num tags: %d\n", len(profile.Tags))
	for i, tag := range profile.Tags {
		fmt.Printf("%d %s offset=%d size=%d (%s)\n", i, tag.Signature, tag.Offset, tag.Size, iccraw.TagName(tag.Signature))
	}
	for i, payload := range profile.Payloads {
		fmt.Printf("%d %q\n", i, payload)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
