package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuiwenzhe/backswiped/decoder"
)

// Version is the build version, set via -ldflags in release builds.
var Version = "dev"

var (
	configFile   = flag.String("config", "config.yaml", "path to configuration file")
	dataDir      = flag.String("data-dir", ".", "directory containing bank/lexicon/bigram files referenced by the config")
	buildBanks   = flag.Bool("build-banks", false, "rebuild and save the lexicon gob snapshot, then exit")
	lexiconWords = flag.String("lexicon-words", "", "newline-delimited word list to build the lexicon snapshot from (with --build-banks)")
)

func main() {
	flag.Parse()
	fmt.Printf("backswiped version: %s\n", Version)

	cfg, err := loadConfig(*configFile, *dataDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	kb := decoder.NewQWERTYKeyboard()

	if *buildBanks {
		if err := runBuildBanks(cfg, kb); err != nil {
			log.Fatalf("failed to build banks: %v", err)
		}
		return
	}

	svc, err := newService(cfg, kb)
	if err != nil {
		log.Fatalf("failed to initialize service: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Println("Service Running")
	fmt.Println("===============")
	fmt.Printf("  discovery: udp/%d\n", cfg.DiscoveryPort)
	fmt.Printf("  decoder:   tcp/%d\n", cfg.DecoderPort)
	fmt.Println("\nPress Ctrl+C to stop")

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()

	select {
	case <-ctx.Done():
		fmt.Println("\nShutting down...")
		select {
		case err := <-errCh:
			if err != nil {
				log.Printf("service stopped with error: %v", err)
			}
		case <-time.After(cfg.ShutdownGrace):
			log.Println("shutdown grace period elapsed")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("service error: %v", err)
		}
	}
	fmt.Println("Service stopped")
}

// newService loads the lexicon, command list, unigram, and bigram tables
// named by cfg and assembles a running decoder.Service.
func newService(cfg *Config, kb *decoder.Keyboard) (*decoder.Service, error) {
	var tok decoder.Tokenizer
	if t, err := decoder.NewTiktokenizer(); err == nil {
		tok = t
	} else {
		log.Printf("tokenizer unavailable, token ids will be empty: %v", err)
	}

	lexicon, err := decoder.LoadLexicon(cfg.LexiconBankPath)
	if err != nil {
		return nil, fmt.Errorf("loading lexicon bank: %w", err)
	}
	commands, err := decoder.LoadCommandList(cfg.CommandListPath, kb, tok)
	if err != nil {
		return nil, fmt.Errorf("loading command list: %w", err)
	}

	var unigram *decoder.Unigram
	if cfg.UnigramPath != "" {
		unigram, err = decoder.LoadUnigram(cfg.UnigramPath)
		if err != nil {
			return nil, fmt.Errorf("loading unigram table: %w", err)
		}
	}

	var bigram *decoder.Bigram
	if cfg.BigramPath != "" {
		bigram, err = decoder.LoadBigram(cfg.BigramPath)
		if err != nil {
			return nil, fmt.Errorf("loading bigram table: %w", err)
		}
	}

	var neural *decoder.Neural
	if cfg.NeuralLM.Endpoint != "" {
		neural = decoder.NewNeural(cfg.NeuralLM.Endpoint, cfg.NeuralLM.Timeout)
	}

	return &decoder.Service{
		Lexicon:       lexicon,
		Commands:      commands,
		Keyboard:      kb,
		Unigram:       unigram,
		Bigram:        bigram,
		Neural:        neural,
		Sessions:      decoder.NewSessionRegistry(),
		DiscoveryPort: cfg.DiscoveryPort,
		DecoderPort:   cfg.DecoderPort,
		ReadDeadline:  cfg.ReadDeadline,
		TopKLexicon:   cfg.TopK.Lexicon,
		TopKCommand:   cfg.TopK.Command,
	}, nil
}

// runBuildBanks builds a lexicon bank from -lexicon-words and writes the
// gob snapshot named by the config, for offline bank preparation.
func runBuildBanks(cfg *Config, kb *decoder.Keyboard) error {
	if *lexiconWords == "" {
		return fmt.Errorf("-lexicon-words is required with -build-banks")
	}
	data, err := os.ReadFile(*lexiconWords)
	if err != nil {
		return fmt.Errorf("reading lexicon word list: %w", err)
	}
	var words []string
	for _, line := range splitLines(string(data)) {
		if line != "" {
			words = append(words, line)
		}
	}

	var tok decoder.Tokenizer
	if t, err := decoder.NewTiktokenizer(); err == nil {
		tok = t
	} else {
		log.Printf("tokenizer unavailable, token ids will be empty: %v", err)
	}

	bank, err := decoder.BuildBank(words, kb, tok)
	if err != nil {
		return fmt.Errorf("building lexicon bank: %w", err)
	}
	if err := decoder.SaveLexicon(cfg.LexiconBankPath, bank); err != nil {
		return fmt.Errorf("saving lexicon snapshot: %w", err)
	}
	fmt.Printf("Built lexicon bank with %d words -> %s\n", bank.Len(), cfg.LexiconBankPath)
	return nil
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, trimCR(s[start:i]))
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, trimCR(s[start:]))
	}
	return out
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}
