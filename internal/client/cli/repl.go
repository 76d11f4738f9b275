package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

var _ execIface = (*App)(nil)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Status(ctx context.Context) error
	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Forgot(ctx context.Context) error
	Verify(ctx context.Context) error
	Reset(ctx context.Context) error
	Search(ctx context.Context, name string) error
	Scan(ctx context.Context, path string) error
	Save(ctx context.Context) error
	History(ctx context.Context) error
	Profile(ctx context.Context, edit bool) error
}

const (
	helpSignedOut = "Available commands: status, signup, login, forgot, verify, reset, search <name>, scan <image>, exit"
	helpSignedIn  = "Available commands: status, search <name>, scan <image>, save, history, profile [edit], forgot, verify, reset, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the MedScan CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Anything after the command is passed as a
// single argument to search and scan, so names with spaces work. Errors
// returned by handlers are rendered with renderError and the loop goes on.
// The loop exits on EOF, when ctx is done, or when the user types "exit" or
// "quit".
//
// Prompt & Commands
//
//	Always:
//	  - help                 show available commands
//	  - status               session, connectivity and cached keys
//	  - search <name>        look a medicine up by name
//	  - scan <image-path>    recognise a medicine from a photo
//	  - forgot, verify, reset
//	                         password reset: request, check and use a code
//	  - exit | quit          leave the program
//
//	Signed out:
//	  - signup, login
//
//	Signed in:
//	  - save                 add the last search/scan result to history
//	  - history              list saved medicines
//	  - profile [edit]       show or edit the profile
//	  - logout
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("medscan%s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}

		var cmdErr error

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "status":
			cmdErr = a.Status(ctx)

		case "signup", "register":
			cmdErr = a.SignUp(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "forgot":
			cmdErr = a.Forgot(ctx)

		case "verify":
			cmdErr = a.Verify(ctx)

		case "reset":
			cmdErr = a.Reset(ctx)

		case "search":
			cmdErr = a.Search(ctx, arg)

		case "scan":
			if arg == "" {
				printlnFn("Usage: scan <image-path>")
				continue
			}
			cmdErr = a.Scan(ctx, arg)

		case "save":
			cmdErr = a.Save(ctx)

		case "history":
			cmdErr = a.History(ctx)

		case "profile":
			cmdErr = a.Profile(ctx, arg == "edit")

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(renderError(cmdErr))
		}
	}
}
