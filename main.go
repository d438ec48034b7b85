package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"thought_leadership_workflow/client"
	"thought_leadership_workflow/config"
	"thought_leadership_workflow/extract"
	"thought_leadership_workflow/job"
	"thought_leadership_workflow/publisher"
	"thought_leadership_workflow/server"
	"thought_leadership_workflow/watch"
)

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type options struct {
	contextText  string
	contextFile  string
	posts        int
	linkedInURLs stringList
	xURLs        stringList
	xSearch      stringList
	xHandles     stringList
	remote       string
	plain        bool
	format       string
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	configPath := flag.String("config", "config/config.json", "path to config file (.json, .yaml or .yml)")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	var opts options
	flag.StringVar(&opts.contextText, "context", "", "context for the posts")
	flag.StringVar(&opts.contextFile, "context-file", "", "read the context from a .txt or .md document")
	flag.IntVar(&opts.posts, "posts", 0, "posts per platform (default from config)")
	flag.Var(&opts.linkedInURLs, "linkedin-url", "LinkedIn URL to scrape for examples (repeatable)")
	flag.Var(&opts.xURLs, "x-url", "X URL to scrape for examples (repeatable)")
	flag.Var(&opts.xSearch, "x-search", "X search term for examples (repeatable)")
	flag.Var(&opts.xHandles, "x-handle", "X account handle to scrape for examples (repeatable)")
	flag.StringVar(&opts.remote, "remote", "", "submit to a running server, e.g. http://localhost:8080")
	flag.BoolVar(&opts.plain, "plain", false, "log progress lines instead of the interactive watcher")
	flag.StringVar(&opts.format, "format", "", "output format: text (default), html or pdf")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.remote != "" {
		if err := runRemote(ctx, opts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Web server mode
	if *serve {
		if err := runServer(ctx, cfg, *addr); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := runLocal(ctx, cfg, opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg config.Config, addr string) error {
	p, err := buildPipeline(ctx, cfg, log.Default())
	if err != nil {
		return err
	}
	defer p.close()

	srv, err := server.New(p.jobs, p.store, cfg.Posts.Default, log.Default())
	if err != nil {
		return err
	}
	listen := cfg.ServerAddr
	if addr != "" {
		listen = addr
	}
	if listen == "" {
		listen = ":8080"
	}
	httpSrv := &http.Server{Addr: listen, Handler: srv.Routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()
	log.Printf("Starting web server on %s", listen)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runLocal(ctx context.Context, cfg config.Config, opts options) error {
	text, err := readContext(opts)
	if err != nil {
		return err
	}
	p, err := buildPipeline(ctx, cfg, log.Default())
	if err != nil {
		return err
	}
	defer p.close()

	spec := job.Spec{
		Context:       text,
		NumPosts:      cfg.Posts.Default,
		LinkedInSeeds: opts.linkedInURLs,
		XSeeds:        opts.xURLs,
		XSearchTerms:  opts.xSearch,
		XHandles:      opts.xHandles,
	}
	if opts.posts > 0 {
		spec.NumPosts = opts.posts
	}
	run, err := p.jobs.Submit(spec)
	if err != nil {
		return err
	}
	log.Printf("[cli] run %s started", run.ID())

	source := func(context.Context) (job.Status, error) { return p.jobs.Status(), nil }
	st, err := follow(ctx, source, opts.plain)
	if err != nil {
		return err
	}
	if st.State == job.StateFailed {
		return fmt.Errorf("job failed: %s", st.Error)
	}
	if st.ArtifactName == "" {
		log.Printf("[cli] output not persisted: %s", st.PersistenceError)
		return printOutput([]byte(publisher.Render(*st.Result)), opts.format)
	}
	body, err := p.store.Load(ctx, st.ArtifactName)
	if err != nil {
		return err
	}
	log.Printf("[cli] saved %s", publisher.FileName(st.ArtifactName))
	return printOutput(body, opts.format)
}

func runRemote(ctx context.Context, opts options) error {
	c, err := client.New(opts.remote, nil)
	if err != nil {
		return err
	}
	text, err := readContext(opts)
	if err != nil {
		return err
	}
	runID, err := c.Submit(ctx, client.SubmitRequest{
		Context:      text,
		NumPosts:     opts.posts,
		LinkedInURLs: opts.linkedInURLs,
		XURLs:        opts.xURLs,
		XSearchTerms: opts.xSearch,
		XHandles:     opts.xHandles,
	})
	if err != nil {
		return err
	}
	log.Printf("[cli] run %s accepted by %s", runID, opts.remote)

	st, err := follow(ctx, c.Status, opts.plain)
	if err != nil {
		return err
	}
	if st.State == job.StateFailed {
		return fmt.Errorf("job failed: %s", st.Error)
	}
	if st.ArtifactName == "" {
		return fmt.Errorf("output not persisted: %s", st.PersistenceError)
	}
	body, err := c.Output(ctx, st.ArtifactName, opts.format)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(body)
	return err
}

func follow(ctx context.Context, source watch.Source, plain bool) (job.Status, error) {
	if plain {
		return watch.Plain(ctx, source, client.DefaultPollInterval, log.Default())
	}
	return watch.Run(ctx, source, client.DefaultPollInterval, os.Stderr)
}

func readContext(opts options) (string, error) {
	if opts.contextFile == "" {
		if strings.TrimSpace(opts.contextText) == "" {
			return "", errors.New("--context or --context-file is required")
		}
		return opts.contextText, nil
	}
	data, err := os.ReadFile(opts.contextFile)
	if err != nil {
		return "", err
	}
	text, err := extract.Text(opts.contextFile, data)
	if err != nil {
		return "", err
	}
	if opts.contextText != "" {
		text = opts.contextText + "\n\n" + text
	}
	return text, nil
}

func printOutput(body []byte, format string) error {
	var err error
	switch format {
	case "", "text":
	case "html":
		body, err = publisher.RenderHTML(body)
	case "pdf":
		body, err = publisher.RenderPDF(body)
	default:
		err = fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(body)
	return err
}
