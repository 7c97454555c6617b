package metrics

import (
	"io/fs"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

var startedAt = time.Now()

// SysHealth represents real-time process metrics.
type SysHealth struct {
	AllocMB        uint64 `json:"allocMB"`
	SysMB          uint64 `json:"sysMB"`
	NumGC          uint32 `json:"numGC"`
	Goroutines     int    `json:"goroutines"`
	ActiveSessions int    `json:"activeSessions"`
	Uptime         string `json:"uptime"`
	DataDiskSize   string `json:"dataDiskSize"`
}

// GetSysHealth collects real-time health data. dataPath is the directory
// holding the database.
func GetSysHealth(dataPath string, activeSessions int) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		AllocMB:        m.Alloc / 1024 / 1024,
		SysMB:          m.Sys / 1024 / 1024,
		NumGC:          m.NumGC,
		Goroutines:     runtime.NumGoroutine(),
		ActiveSessions: activeSessions,
		Uptime:         time.Since(startedAt).Truncate(time.Second).String(),
		DataDiskSize:   humanize.IBytes(dirSize(dataPath)),
	}
}

func dirSize(path string) uint64 {
	var size uint64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += uint64(info.Size())
		}
		return nil
	})
	return size
}
