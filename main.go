package main

import (
	"fmt"
	"io"
	"os"
	"time"
)

var (
	exitFunc = os.Exit
	runTUI   = RunTUI
)

func main() {
	if err := runMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		exitFunc(1)
	}
}

func runMain(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(stderr, "config error:", err)
		return err
	}
	logger, closeLog := newLogger(cfg)
	defer closeLog()

	api := NewAPIClient(cfg.APIBaseURL, time.Duration(cfg.RequestTimeoutSecs)*time.Second)
	session := NewSessionStore(api)
	session.RestoreSession()
	app := NewApp(cfg, api, session, logger)

	if len(args) >= 1 {
		switch args[0] {
		case "--logout":
			session.Logout()
			fmt.Fprintln(stdout, "Signed out.")
			return nil
		case "--login":
			return loginFromTerminal(session, stdin, stdout, stderr)
		case "--token":
			if len(args) < 2 {
				fmt.Fprintln(stderr, "missing token value")
				return fmt.Errorf("missing token value")
			}
			if err := session.CompleteOAuthCallback(args[1]); err != nil {
				fmt.Fprintln(stderr, "login error:", err)
				return err
			}
			fmt.Fprintf(stdout, "Signed in as %s\n", session.User().Name)
			return nil
		case "--collect":
			if err := requireSession(session); err != nil {
				fmt.Fprintln(stderr, err)
				return err
			}
			if err := app.CollectNow(); err != nil {
				fmt.Fprintln(stderr, "collect error:", err)
				return err
			}
			fmt.Fprintln(stdout, app.notice)
			return nil
		case "--list":
			if err := requireSession(session); err != nil {
				fmt.Fprintln(stderr, err)
				return err
			}
			if err := app.FetchArticles(); err != nil {
				fmt.Fprintln(stderr, "fetch error:", err)
				return err
			}
			fmt.Fprintln(stdout, render(app))
			return nil
		}
	}

	if !isTerminalReader(stdin) || !isTerminalWriter(stdout) {
		if err := requireSession(session); err != nil {
			fmt.Fprintln(stderr, err)
			return err
		}
		app.RefreshStats()
		if err := app.FetchArticles(); err != nil {
			logger.Warn("initial fetch failed", "err", err)
		}
		if err := Run(app, stdin, stdout); err != nil {
			fmt.Fprintln(stderr, "run error:", err)
			return err
		}
		return nil
	}

	if err := runTUI(app); err != nil {
		fmt.Fprintln(stderr, "run error:", err)
		return err
	}
	return nil
}

func requireSession(session *SessionStore) error {
	if authBypass || session.Authenticated() {
		return nil
	}
	return fmt.Errorf("not signed in: run with --login first")
}

// loginFromTerminal walks the OAuth flow without the dashboard: print the
// auth URL, read the callback code from stdin, persist the token.
func loginFromTerminal(session *SessionStore, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	url, err := session.BeginOAuthLogin()
	if err != nil {
		fmt.Fprintln(stderr, "login error:", err)
		return err
	}
	fmt.Fprintln(stdout, "Open this URL in a browser and authorize:")
	fmt.Fprintln(stdout, "  "+url)
	fmt.Fprint(stdout, "Paste the authorization code: ")
	var code string
	if _, err := fmt.Fscanln(stdin, &code); err != nil {
		fmt.Fprintln(stderr, "read error:", err)
		return err
	}
	if err := session.CompleteOAuthCallback(code); err != nil {
		fmt.Fprintln(stderr, "login error:", err)
		return err
	}
	fmt.Fprintf(stdout, "Signed in as %s\n", session.User().Name)
	return nil
}

func isTerminalReader(stream io.Reader) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func isTerminalWriter(stream io.Writer) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
