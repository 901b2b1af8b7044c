// Command spark-chat sends a single chat request to a Spark backend and
// prints the reply. It exercises both buffered and streaming mode and is
// the quickest way to check a deployment end to end:
//
//	spark-chat -stream -thinking "Count from 1 to 5"
//
// The API key and base URL come from configuration (spark.yaml / SPARK_*
// env vars); flags override the configured chat options.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/MrPeterss/infosci-spark-client/pkg/config"
	"github.com/MrPeterss/infosci-spark-client/pkg/debug"
	"github.com/MrPeterss/infosci-spark-client/pkg/spark"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	stream := flag.Bool("stream", false, "stream the response as it arrives")
	thinking := flag.Bool("thinking", false, "include the model's reasoning in the output")
	reasoning := flag.String("reasoning", "", "reasoning effort: low, medium, or high")
	system := flag.String("system", "", "optional system prompt")
	flag.Parse()

	prompt := strings.Join(flag.Args(), " ")
	if prompt == "" {
		fmt.Fprintln(os.Stderr, "usage: spark-chat [flags] <prompt>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	debug.Init(cfg.Debug.Categories, cfg.Debug.Level)

	client := spark.NewClient(cfg.Client.APIKey, cfg.Client.BaseURL, cfg.Client.Timeout)

	var messages []spark.Message
	if *system != "" {
		messages = append(messages, spark.Message{Role: "system", Content: *system})
	}
	messages = append(messages, spark.Message{Role: "user", Content: prompt})

	opts := spark.ChatOptions{
		ShowThinking:   *thinking || cfg.Client.ShowThinking,
		ReasoningLevel: spark.ReasoningLevel(*reasoning),
	}
	if opts.ReasoningLevel == "" {
		opts.ReasoningLevel = spark.ReasoningLevel(cfg.Client.ReasoningLevel)
	}

	ctx := context.Background()

	if *stream {
		if err := runStreaming(ctx, client, messages, opts); err != nil {
			slog.Error("chat failed", "error", err)
			os.Exit(1)
		}
		return
	}

	result, err := client.Complete(ctx, messages, opts)
	if err != nil {
		slog.Error("chat failed", "error", err)
		os.Exit(1)
	}

	if result.Reasoning != "" {
		fmt.Printf("[thinking] %s\n\n", result.Reasoning)
	}
	fmt.Println(result.Content)
}

func runStreaming(ctx context.Context, client *spark.Client, messages []spark.Message, opts spark.ChatOptions) error {
	st, err := client.Stream(ctx, messages, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	inThinking := false
	for st.Next() {
		delta := st.Current()
		if delta.Reasoning != "" {
			if !inThinking {
				fmt.Print("[thinking] ")
				inThinking = true
			}
			fmt.Print(delta.Reasoning)
		}
		if delta.Content != "" {
			if inThinking {
				fmt.Print("\n\n")
				inThinking = false
			}
			fmt.Print(delta.Content)
		}
	}
	fmt.Println()

	return st.Err()
}
