// Command cfsimg builds and inspects CFS1 data disk images from the host,
// the way biscuit's mkfs command builds a bootable image before the
// kernel ever runs. It drives the real internal/cfs1 package against a
// host file opened through a small hal.Disk adapter, so the on-disk
// format this tool writes is byte-for-byte what the kernel mounts.
//
// Usage mirrors mkfs.go's plain os.Args dispatch rather than a flag-based
// CLI, supplemented with the create/inject/list/extract operations
// original_source/tools/inject_cfs.py exposes as separate invocations.
package main

import (
	"fmt"
	"os"

	"cdxos/internal/cfs1"
	"cdxos/internal/hal"
)

func usage() {
	fmt.Printf("usage:\n")
	fmt.Printf("  cfsimg format <image> <sectors>\n")
	fmt.Printf("  cfsimg inject <image> <host-file> [cfs-name]\n")
	fmt.Printf("  cfsimg ls <image>\n")
	fmt.Printf("  cfsimg extract <image> <cfs-name> <host-file>\n")
}

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	image := os.Args[2]

	var err error
	switch cmd {
	case "format":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		err = runFormat(image, os.Args[3])
	case "inject":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		name := ""
		if len(os.Args) >= 5 {
			name = os.Args[4]
		}
		err = runInject(image, os.Args[3], name)
	case "ls":
		err = runList(image)
	case "extract":
		if len(os.Args) != 5 {
			usage()
			os.Exit(1)
		}
		err = runExtract(image, os.Args[3], os.Args[4])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("cfsimg: %v\n", err)
		os.Exit(1)
	}
}

func runFormat(imagePath string, sectorsArg string) error {
	sectors, err := parseSectorCount(sectorsArg)
	if err != nil {
		return err
	}
	disk, err := openOrCreateImage(imagePath, sectors)
	if err != nil {
		return err
	}
	defer disk.Close()

	if _, err := cfs1.Format(disk, sectors); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	fmt.Printf("cfsimg: formatted %s (%d sectors)\n", imagePath, sectors)
	return nil
}

func runInject(imagePath, hostPath, name string) error {
	disk, err := openImage(imagePath)
	if err != nil {
		return err
	}
	defer disk.Close()

	fs, err := cfs1.Mount(disk)
	if err != nil {
		return fmt.Errorf("mount: %w (run format first)", err)
	}

	data, err := os.ReadFile(hostPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", hostPath, err)
	}

	if name == "" {
		name = baseName(hostPath)
	}

	if err := fs.Write(name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	fmt.Printf("cfsimg: injected %s as %q (%d bytes)\n", hostPath, name, len(data))
	return nil
}

func runList(imagePath string) error {
	disk, err := openImage(imagePath)
	if err != nil {
		return err
	}
	defer disk.Close()

	fs, err := cfs1.Mount(disk)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	entries, err := fs.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%-31s %10d  sector %d\n", e.Name, e.Size, e.StartSector)
	}
	fmt.Printf("%d bytes used, %d bytes free\n", fs.UsedBytes(), fs.FreeBytes())
	return nil
}

func runExtract(imagePath, name, hostPath string) error {
	disk, err := openImage(imagePath)
	if err != nil {
		return err
	}
	defer disk.Close()

	fs, err := cfs1.Mount(disk)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	data, err := fs.Read(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := os.WriteFile(hostPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", hostPath, err)
	}
	fmt.Printf("cfsimg: extracted %q to %s (%d bytes)\n", name, hostPath, len(data))
	return nil
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

func parseSectorCount(s string) (uint32, error) {
	var n uint32
	if s == "" {
		return 0, fmt.Errorf("missing sector count")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid sector count %q", s)
		}
		n = n*10 + uint32(c-'0')
	}
	if n == 0 {
		return 0, fmt.Errorf("sector count must be > 0")
	}
	return n, nil
}

var _ hal.Disk = (*fileDisk)(nil)
