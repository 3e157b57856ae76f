package yonatan

import (
	"fmt"
	"os"
)

// Execute is the main entry point for the CLI. Running with no command opens
// the chat widget.
func Execute() error {
	if len(os.Args) < 2 {
		return handleChatCommand(nil)
	}
	if os.Args[1] == "-h" || os.Args[1] == "--help" {
		printUsage()
		return nil
	}

	command := os.Args[1]
	switch command {
	case "chat":
		return handleChatCommand(os.Args[2:])
	case "demo":
		return handleDemoCommand(os.Args[2:])
	case "setup":
		return handleSetupCommand()
	case "status":
		return handleStatusCommand(os.Args[2:])
	case "reset":
		return handleResetCommand(os.Args[2:])
	case "version":
		printVersion()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage() {
	fmt.Println("usage: yonatan [-h] {chat,demo,setup,status,reset,version} ...")
	fmt.Println("")
	fmt.Println("positional arguments:")
	fmt.Println("  {chat,demo,setup,status,reset,version}")
	fmt.Println("                        Yonatan commands")
	fmt.Println("    chat                Open the chat widget (default)")
	fmt.Println("    demo                Chat against a built-in stub backend")
	fmt.Println("    setup               Run interactive setup")
	fmt.Println("    status              Probe backend health")
	fmt.Println("    reset               Delete the conversation and start over")
	fmt.Println("    version             Show version information")
	fmt.Println("")
	fmt.Println("options:")
	fmt.Println("  -h, --help            show this help message and exit")
}
