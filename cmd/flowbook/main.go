/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"flowbook/internal/annotate"
	"flowbook/internal/backend"
	"flowbook/internal/config"
	"flowbook/internal/crash"
	"flowbook/internal/domain"
	"flowbook/internal/export"
	applog "flowbook/internal/log"
	"flowbook/internal/storage"
	"flowbook/internal/telemetry"
	"flowbook/internal/ui"
	"flowbook/internal/version"
)

func usage() {
	fmt.Println("Flowbook — interactive e-book reader")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  flowbook version|-v|--version               Show version")
	fmt.Println("  flowbook info <book.json>                    Print book summary and annotation stats")
	fmt.Println("  flowbook export <book.json> <out.pdf>        Export pages with annotations to PDF")
	fmt.Println("  flowbook render <book.json> <page> <out.png> Render a single annotated page to PNG")
	fmt.Println("  flowbook sync <book.json>                    Push local annotations to the configured sync server")
	fmt.Println("  flowbook ui [<book.json>]                    Launch desktop reader (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ss *annotate.Session
	defer func() { crash.Recover(ss) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Flowbook — interactive e-book reader")
			fmt.Println(version.String())
			return
		case "info":
			if len(args) < 3 {
				fmt.Println("info requires <book.json>")
				usage()
				os.Exit(2)
			}
			book, st := mustOpen(l, args[2])
			defer closeStore(l, st)
			env := st.LoadEnvelope(context.Background(), book.ID)
			fmt.Printf("Book: %s (%s)\n", book.Title, book.ID)
			fmt.Printf("Pages: %d\n", book.PageCount())
			fmt.Printf("Modules: %d\n", len(book.Modules))
			fmt.Printf("Annotated pages: %d\n", len(env.Pages))
			if !env.UpdatedAt.IsZero() {
				fmt.Printf("Last saved: %s\n", env.UpdatedAt.Format(time.RFC3339))
			}
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <book.json> and <out.pdf>")
				usage()
				os.Exit(2)
			}
			book, st := mustOpen(l, args[2])
			defer closeStore(l, st)
			env := st.LoadEnvelope(context.Background(), book.ID)
			out, _ := filepath.Abs(args[3])
			if err := export.WritePDF(book, env, out, export.PDFOptions{IncludeBlank: true}); err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Exported", out)
			telemetry.ExportCompleted("pdf", book.PageCount())
			return
		case "render":
			if len(args) < 5 {
				fmt.Println("render requires <book.json>, <page> and <out.png>")
				usage()
				os.Exit(2)
			}
			book, st := mustOpen(l, args[2])
			defer closeStore(l, st)
			idx, err := strconv.Atoi(args[3])
			if err != nil || idx < 1 || idx > book.PageCount() {
				fmt.Println("page must be between 1 and", book.PageCount())
				os.Exit(2)
			}
			env := st.LoadEnvelope(context.Background(), book.ID)
			out, _ := filepath.Abs(args[4])
			if err := export.WritePNG(book.Pages[idx-1], env.Pages[idx-1], out); err != nil {
				l.Error("render failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Rendered", out)
			telemetry.ExportCompleted("png", 1)
			return
		case "sync":
			if len(args) < 3 {
				fmt.Println("sync requires <book.json>")
				usage()
				os.Exit(2)
			}
			cfg, token, err := config.Load()
			if err != nil {
				l.Error("config load failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if !cfg.Sync.Enabled || cfg.Sync.BaseURL == "" {
				fmt.Println("Sync is not configured. Set sync.enabled and sync.base_url in the config file.")
				os.Exit(2)
			}
			book, st := mustOpen(l, args[2])
			defer closeStore(l, st)
			env := st.LoadEnvelope(context.Background(), book.ID)
			cli := backend.NewClient(cfg.Sync.BaseURL, token, time.Duration(cfg.Sync.TimeoutMs)*time.Millisecond)
			if err := cli.PushEnvelope(context.Background(), env); err != nil {
				l.Error("sync push failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Printf("Pushed annotations for %s (%d pages)\n", book.ID, len(env.Pages))
			return
		case "ui":
			var path string
			if len(args) >= 3 {
				path = args[2]
			}
			if err := ui.Run(path); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

func mustOpen(l *slog.Logger, bookPath string) (*domain.Book, *storage.Store) {
	abs, _ := filepath.Abs(bookPath)
	l.Info("open book", slog.String("path", abs))
	book, err := storage.LoadBook(abs)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	dir, err := storage.DefaultDir()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	st, err := storage.Open(dir)
	if err != nil {
		l.Error("opening annotation store failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return book, st
}

func closeStore(l *slog.Logger, st *storage.Store) {
	if err := st.Close(); err != nil {
		l.Error("closing annotation store failed", slog.Any("err", err))
	}
}
