// Package sysmetrics polls /proc for host CPU, memory, load-average,
// and network throughput, and exposes the result as a RecordStream so
// system load can drive particles exactly like any other tabular
// source (see record.Registry).
//
// Grounded on original_source/src/sysmon.c's sysmon_update_cpu
// (parse cpu total line from /proc/stat, delta against the previous
// sample to get a usage percentage) and sysmon_update_memory,
// generalized from the C struct-of-arrays per-core tracking to a
// single aggregate Sample, since the spec names only an aggregate
// cpu_pct column.
package sysmetrics

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pthm-cable/fieldglass/simerr"
)

// Sample is one poll's worth of host metrics.
type Sample struct {
	CPUPct   float64
	MemPct   float64
	Load1    float64
	NetRxBps float64
	NetTxBps float64
}

type cpuTimes struct {
	idle, total uint64
}

type netCounters struct {
	rxBytes, txBytes uint64
}

// Collector polls /proc on demand and caches the most recent Sample.
// Sample() may be called concurrently with Poll; it never blocks on
// I/O, it only reads the cached value (A12). Poll updates its previous
// counters without locking, so Poll itself is not safe to call from
// more than one goroutine at a time.
type Collector struct {
	procRoot string

	mu        sync.Mutex
	latest    Sample
	hasSample bool

	prevCPU  cpuTimes
	haveCPU  bool
	prevNet  netCounters
	haveNet  bool
	prevTime time.Time
}

// NewCollector returns a Collector reading the standard /proc
// mountpoint.
func NewCollector() *Collector {
	return &Collector{procRoot: "/proc"}
}

// Sample returns the most recently polled metrics, or the zero value
// if Poll has never succeeded. It does not itself perform I/O.
func (c *Collector) Sample() Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Poll reads /proc/stat, /proc/meminfo, /proc/loadavg, and
// /proc/net/dev once, computing deltas against the previous poll
// where applicable, and updates the cached sample.
func (c *Collector) Poll() error {
	now := time.Now()

	cpuPct, err := c.pollCPU()
	if err != nil {
		return err
	}
	memPct, err := c.pollMemory()
	if err != nil {
		return err
	}
	load1, err := c.pollLoadAvg()
	if err != nil {
		return err
	}
	rxBps, txBps, err := c.pollNet(now)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.latest = Sample{CPUPct: cpuPct, MemPct: memPct, Load1: load1, NetRxBps: rxBps, NetTxBps: txBps}
	c.hasSample = true
	c.prevTime = now
	c.mu.Unlock()
	return nil
}

func (c *Collector) pollCPU() (float64, error) {
	f, err := os.Open(c.procRoot + "/stat")
	if err != nil {
		return 0, simerr.Wrap(simerr.System, "sysmetrics.Collector.pollCPU", "open /proc/stat", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return 0, simerr.New(simerr.Parse, "sysmetrics.Collector.pollCPU", "malformed cpu line")
		}

		var total, idle uint64
		for i, raw := range fields[1:] {
			v, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				continue
			}
			total += v
			if i == 3 { // idle is the 4th value
				idle = v
			}
		}

		curr := cpuTimes{idle: idle, total: total}
		pct := 0.0
		if c.haveCPU {
			totalDelta := curr.total - c.prevCPU.total
			idleDelta := curr.idle - c.prevCPU.idle
			if totalDelta > 0 {
				pct = 100 * float64(totalDelta-idleDelta) / float64(totalDelta)
			}
		}
		c.prevCPU = curr
		c.haveCPU = true
		return pct, nil
	}
	return 0, simerr.New(simerr.Parse, "sysmetrics.Collector.pollCPU", "no cpu line found")
}

func (c *Collector) pollMemory() (float64, error) {
	f, err := os.Open(c.procRoot + "/meminfo")
	if err != nil {
		return 0, simerr.Wrap(simerr.System, "sysmetrics.Collector.pollMemory", "open /proc/meminfo", err)
	}
	defer f.Close()

	var totalKB, availKB uint64
	var haveTotal, haveAvail bool

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		switch strings.TrimSuffix(fields[0], ":") {
		case "MemTotal":
			totalKB, _ = strconv.ParseUint(fields[1], 10, 64)
			haveTotal = true
		case "MemAvailable":
			availKB, _ = strconv.ParseUint(fields[1], 10, 64)
			haveAvail = true
		}
		if haveTotal && haveAvail {
			break
		}
	}
	if !haveTotal || totalKB == 0 {
		return 0, nil
	}
	usedKB := totalKB - availKB
	return 100 * float64(usedKB) / float64(totalKB), nil
}

func (c *Collector) pollLoadAvg() (float64, error) {
	data, err := os.ReadFile(c.procRoot + "/loadavg")
	if err != nil {
		return 0, simerr.Wrap(simerr.System, "sysmetrics.Collector.pollLoadAvg", "open /proc/loadavg", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) < 1 {
		return 0, simerr.New(simerr.Parse, "sysmetrics.Collector.pollLoadAvg", "empty loadavg")
	}
	load1, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, simerr.Wrap(simerr.Parse, "sysmetrics.Collector.pollLoadAvg", "unparseable load1", err)
	}
	return load1, nil
}

func (c *Collector) pollNet(now time.Time) (rxBps, txBps float64, err error) {
	f, openErr := os.Open(c.procRoot + "/net/dev")
	if openErr != nil {
		return 0, 0, simerr.Wrap(simerr.System, "sysmetrics.Collector.pollNet", "open /proc/net/dev", openErr)
	}
	defer f.Close()

	var rxTotal, txTotal uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, ":") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		iface := strings.TrimSpace(parts[0])
		if iface == "lo" {
			continue
		}
		fields := strings.Fields(parts[1])
		if len(fields) < 9 {
			continue
		}
		rx, _ := strconv.ParseUint(fields[0], 10, 64)
		tx, _ := strconv.ParseUint(fields[8], 10, 64)
		rxTotal += rx
		txTotal += tx
	}

	curr := netCounters{rxBytes: rxTotal, txBytes: txTotal}
	if c.haveNet && !c.prevTime.IsZero() {
		elapsed := now.Sub(c.prevTime).Seconds()
		if elapsed > 0 {
			rxBps = 8 * float64(curr.rxBytes-c.prevNet.rxBytes) / elapsed
			txBps = 8 * float64(curr.txBytes-c.prevNet.txBytes) / elapsed
		}
	}
	c.prevNet = curr
	c.haveNet = true
	return rxBps, txBps, nil
}
