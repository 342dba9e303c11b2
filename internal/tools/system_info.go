package tools

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// SystemInfoTool handles the system_info MCP tool.
type SystemInfoTool struct{}

// NewSystemInfoTool creates a SystemInfoTool.
func NewSystemInfoTool() *SystemInfoTool {
	return &SystemInfoTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *SystemInfoTool) Definition() mcp.Tool {
	return mcp.NewTool("system_info",
		mcp.WithDescription(
			"Return basic information about the machine running the server: OS, "+
				"architecture, CPUs, memory, Go runtime, user and working directory.",
		),
	)
}

// Handle processes the system_info tool call. Probes that fail are shown
// as "unknown" rather than failing the call.
func (t *SystemInfoTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	b.WriteString("System Information:\n")

	line := func(label, value string) {
		if value == "" {
			value = "unknown"
		}
		fmt.Fprintf(&b, "- %s: %s\n", label, value)
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		line("Hostname", info.Hostname)
		line("OS", info.OS)
		line("Platform", strings.TrimSpace(info.Platform+" "+info.PlatformVersion))
		line("Kernel", info.KernelVersion)
	} else {
		line("OS", runtime.GOOS)
	}
	line("Architecture", runtime.GOARCH)

	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		line("CPUs", fmt.Sprintf("%d", n))
	} else {
		line("CPUs", fmt.Sprintf("%d", runtime.NumCPU()))
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		line("Memory", fmt.Sprintf("%s used of %s (%.0f%%)",
			humanize.IBytes(vm.Used), humanize.IBytes(vm.Total), vm.UsedPercent))
	} else {
		line("Memory", "")
	}

	if proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if mi, err := proc.MemoryInfoWithContext(ctx); err == nil {
			line("Server RSS", humanize.IBytes(mi.RSS))
		}
	}

	line("Go Version", runtime.Version())
	if u, err := user.Current(); err == nil {
		line("User", u.Username)
	} else {
		line("User", "")
	}
	wd, _ := os.Getwd()
	line("Working Directory", wd)

	return mcp.NewToolResultText(b.String()), nil
}
