//go:build !unix

package preflight

import "os"

func checkAccess(path string, write bool) error {
	dir, err := os.Open(path)
	if err != nil {
		return err
	}
	_ = dir.Close()
	if !write {
		return nil
	}
	probe, err := os.CreateTemp(path, ".fivepack-probe-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}
