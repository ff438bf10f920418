package main

import (
	"io"

	"github.com/joshuapare/webmap/internal/extract"
	"github.com/joshuapare/webmap/internal/logger"
	"github.com/joshuapare/webmap/internal/memory"
)

// openTarget opens pid for reading from outside the process; tests replace
// it.
var openTarget = func(pid uint32) (memory.Reader, uint64, io.Closer, error) {
	p, err := memory.OpenProcess(pid)
	if err != nil {
		return nil, 0, nil, err
	}
	base, err := p.MainModuleBase()
	if err != nil {
		p.Close()
		return nil, 0, nil, err
	}
	return p, base, p, nil
}

// openDirect returns an extractor over the target's memory, bypassing the
// service. The caller closes the returned closer.
func openDirect(pid uint32) (*extract.Extractor, io.Closer, error) {
	if pid == 0 {
		var err error
		if pid, err = findProcess(cfg.ProcessName); err != nil {
			return nil, nil, err
		}
	}
	mem, base, closer, err := openTarget(pid)
	if err != nil {
		return nil, nil, err
	}
	printVerbose("Reading process %d, module base %#x\n", pid, base)
	ex := extract.New(extract.Target{
		Mem:               mem,
		Base:              base,
		NameTableOffset:   cfg.NameTableOffset,
		ObjectArrayOffset: cfg.ObjectArrayOffset,
	}, extract.Options{ManagerName: cfg.ManagerName, Logger: logger.Named("extract")})
	return ex, closer, nil
}
