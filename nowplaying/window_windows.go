//go:build windows

package nowplaying

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procGetWindowTextLength = user32.NewProc("GetWindowTextLengthW")
)

type systemProcesses struct{}

// Processes walks a Toolhelp32 process snapshot
func (systemProcesses) Processes() ([]Process, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("process snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	var procs []Process
	for err = windows.Process32First(snap, &entry); err == nil; err = windows.Process32Next(snap, &entry) {
		procs = append(procs, Process{
			PID:        entry.ProcessID,
			Executable: windows.UTF16ToString(entry.ExeFile[:]),
		})
	}
	if err != windows.ERROR_NO_MORE_FILES {
		return procs, fmt.Errorf("process enumeration failed: %w", err)
	}
	return procs, nil
}

// EnumWindows needs a callback created once; windows.NewCallback slots are
// never released.
var (
	enumMu      sync.Mutex
	enumPIDs    map[uint32]bool
	enumResult  []Window
	enumWindows = windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		var pid uint32
		if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil || !enumPIDs[pid] {
			return 1
		}
		enumResult = append(enumResult, Window{
			PID:     pid,
			Title:   windowText(hwnd),
			Visible: windows.IsWindowVisible(hwnd),
		})
		return 1
	})
)

func windowText(hwnd windows.HWND) string {
	n, _, _ := procGetWindowTextLength.Call(uintptr(hwnd))
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}

type systemWindows struct{}

// Windows enumerates top-level windows owned by pids
func (systemWindows) Windows(pids []uint32) ([]Window, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumPIDs = make(map[uint32]bool, len(pids))
	for _, pid := range pids {
		enumPIDs[pid] = true
	}
	enumResult = nil

	if err := windows.EnumWindows(enumWindows, nil); err != nil {
		return nil, fmt.Errorf("window enumeration failed: %w", err)
	}
	return enumResult, nil
}
