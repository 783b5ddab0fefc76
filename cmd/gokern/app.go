package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertwitch/gokern/internal/configuration"
	"github.com/desertwitch/gokern/internal/disk"
	"github.com/desertwitch/gokern/internal/filesys"
	"github.com/desertwitch/gokern/internal/ksyscall"
	"github.com/dustin/go-humanize"
)

// App carries the established kernel subsystems for command dispatch.
type App struct {
	config *configuration.BootConfig
	fsys   *filesys.FileSystem
	dev    *disk.Disk
	kernel *ksyscall.Kernel
	out    io.Writer
}

// NewApp returns a pointer to a new [App].
func NewApp(config *configuration.BootConfig, out io.Writer) *App {
	return &App{
		config: config,
		out:    out,
	}
}

// Run dispatches one disk-backed command.
func (app *App) Run(args []string) error {
	command, args := args[0], args[1:]

	switch command {
	case "format":
		return app.cmdChecksum()

	case "create":
		if len(args) != 2 {
			return fmt.Errorf("%w: create <path> <bytes>", errUsage)
		}

		size, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: create <path> <bytes>", errUsage)
		}

		return app.fsys.Create(args[0], int32(size))

	case "mkdir":
		if len(args) != 1 {
			return fmt.Errorf("%w: mkdir <path>", errUsage)
		}

		return app.fsys.CreateDirectory(args[0])

	case "rm":
		if len(args) != 1 {
			return fmt.Errorf("%w: rm <path>", errUsage)
		}

		return app.fsys.Remove(args[0])

	case "rrm":
		if len(args) != 1 {
			return fmt.Errorf("%w: rrm <path>", errUsage)
		}

		return app.fsys.RecursiveRemove(args[0])

	case "ls":
		return app.cmdList(pathArg(args), false)

	case "rls":
		return app.cmdList(pathArg(args), true)

	case "cat":
		if len(args) != 1 {
			return fmt.Errorf("%w: cat <path>", errUsage)
		}

		return app.cmdCat(args[0])

	case "put":
		if len(args) != 2 {
			return fmt.Errorf("%w: put <hostfile> <path>", errUsage)
		}

		return app.cmdPut(args[0], args[1])

	case "print":
		return app.fsys.Print(app.out)

	case "checksum":
		return app.cmdChecksum()

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return ""
}

func (app *App) cmdList(path string, recursive bool) error {
	fmt.Fprintln(app.out, renderTitle("Listing of /"+strings.TrimPrefix(path, "/")))

	if recursive {
		return app.fsys.RecursiveList(path, app.out)
	}

	entries, err := app.fsys.Entries(path)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		name := entry.NameString()

		if entry.IsDir {
			fmt.Fprintln(app.out, renderDirEntry(name+"/"))

			continue
		}

		file, err := app.fsys.Open(joinPath(path, name))
		if err != nil {
			return err
		}

		fmt.Fprintln(app.out, renderFileEntry(name, humanize.IBytes(uint64(file.Length()))))
	}

	return nil
}

// cmdCat streams a file through the kernel's descriptor syscall surface, the
// way an external dispatcher would consume it.
func (app *App) cmdCat(path string) error {
	id := app.kernel.SysOpen(path)
	if id < 0 {
		return fmt.Errorf("%w: %q", errSyscall, path)
	}
	defer app.kernel.SysClose(id)

	buf := make([]byte, disk.SectorSize)
	for {
		n := app.kernel.SysRead(buf, len(buf), id)
		if n < 0 {
			return fmt.Errorf("%w: reading %q", errSyscall, path)
		}

		if n == 0 {
			return nil
		}

		if _, err := app.out.Write(buf[:n]); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
}

// cmdPut copies a host file into the filesystem through the kernel's
// syscall surface.
func (app *App) cmdPut(hostPath, path string) error {
	data, err := os.ReadFile(hostPath)
	if err != nil {
		return fmt.Errorf("failed to read host file: %w", err)
	}

	if !app.kernel.SysCreate(path, len(data)) {
		return fmt.Errorf("%w: creating %q", errSyscall, path)
	}

	id := app.kernel.SysOpen(path)
	if id < 0 {
		return fmt.Errorf("%w: %q", errSyscall, path)
	}
	defer app.kernel.SysClose(id)

	for written := 0; written < len(data); {
		n := app.kernel.SysWrite(data[written:], len(data)-written, id)
		if n <= 0 {
			return fmt.Errorf("%w: writing %q", errSyscall, path)
		}

		written += n
	}

	fmt.Fprintf(app.out, "%s -> %s (%s)\n", hostPath, path, humanize.IBytes(uint64(len(data))))

	return nil
}

func (app *App) cmdChecksum() error {
	sum, err := disk.Checksum(app.dev)
	if err != nil {
		return err
	}

	fmt.Fprintln(app.out, renderTitle("Disk image"))
	fmt.Fprintf(app.out, "sectors:  %d\n", app.dev.NumSectors())
	fmt.Fprintf(app.out, "size:     %s\n", humanize.IBytes(uint64(app.dev.NumSectors()*disk.SectorSize)))
	fmt.Fprintf(app.out, "checksum: %s\n", sum)

	return nil
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}

	return dir + "/" + name
}
