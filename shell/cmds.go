package shell

import "github.com/beevik/cmd"

var cmds *cmd.Tree

func init() {
	root := cmd.NewTree("rvm")

	root.AddCommand(cmd.Command{
		Name:        "help",
		Brief:       "Display help for a command",
		Description: "Display help for a command, or list all commands.",
		Usage:       "help [<command>]",
		Data:        (*Shell).cmdHelp,
	})
	root.AddCommand(cmd.Command{
		Name:  "quit",
		Brief: "Quit the shell",
		Usage: "quit",
		Data:  (*Shell).cmdQuit,
	})
	root.AddCommand(cmd.Command{
		Name:  "run",
		Brief: "Run the program from the current PC",
		Description: "Run the loaded program until it halts, either from" +
			" a hlt instruction, an illegal opcode, or a divide by zero.",
		Usage: "run",
		Data:  (*Shell).cmdRun,
	})
	root.AddCommand(cmd.Command{
		Name:  "step",
		Brief: "Step one or more instructions",
		Usage: "step [<count>]",
		Data:  (*Shell).cmdStep,
	})
	root.AddCommand(cmd.Command{
		Name:  "registers",
		Brief: "Display register contents",
		Usage: "registers",
		Data:  (*Shell).cmdRegisters,
	})
	root.AddCommand(cmd.Command{
		Name:  "program",
		Brief: "Disassemble the loaded program",
		Usage: "program",
		Data:  (*Shell).cmdProgram,
	})
	root.AddCommand(cmd.Command{
		Name:  "dump",
		Brief: "Dump heap contents",
		Description: "Dump the contents of the heap starting from the" +
			" specified offset. The number of bytes to dump may be" +
			" specified as an option. If no offset is specified, the" +
			" dump continues from where the last dump left off.",
		Usage: "dump [<offset>] [<bytes>]",
		Data:  (*Shell).cmdDump,
	})
	root.AddCommand(cmd.Command{
		Name:  "symbols",
		Brief: "List the last assembled program's symbol table",
		Usage: "symbols",
		Data:  (*Shell).cmdSymbols,
	})
	root.AddCommand(cmd.Command{
		Name:  "history",
		Brief: "List previously entered lines",
		Usage: "history",
		Data:  (*Shell).cmdHistory,
	})
	root.AddCommand(cmd.Command{
		Name:  "clear",
		Brief: "Clear the program and reset the PC",
		Usage: "clear",
		Data:  (*Shell).cmdClear,
	})
	root.AddCommand(cmd.Command{
		Name:  "load_file",
		Brief: "Assemble a file from disk and load it",
		Usage: "load_file <filename>",
		Data:  (*Shell).cmdLoadFile,
	})
	root.AddCommand(cmd.Command{
		Name:  "set",
		Brief: "Display or change a shell setting",
		Usage: "set [<name> <value>]",
		Data:  (*Shell).cmdSet,
	})

	root.AddShortcut("?", "help")
	root.AddShortcut("q", "quit")
	root.AddShortcut("r", "run")
	root.AddShortcut("s", "step")
	root.AddShortcut("reg", "registers")
	root.AddShortcut("p", "program")
	root.AddShortcut("d", "dump")

	cmds = root
}
