package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/z64scene/pkg/cutscene"
	"github.com/Faultbox/z64scene/pkg/encoding"
)

// readCutscenes parses every cutscene array in a C source file. UTF-16
// sources with a byte order mark are accepted.
func readCutscenes(path string, log *zap.Logger) ([]*cutscene.Cutscene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read source")
	}
	return cutscene.NewParser(log).Parse(encoding.DecodeSource(data))
}

// writeCutscenes writes cutscenes in the scene description format, ready to
// paste under extra_cutscenes or a header's cutscene.
func writeCutscenes(w io.Writer, cutscenes []*cutscene.Cutscene) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cutscenes); err != nil {
		return err
	}
	return enc.Close()
}

// writeCutscenesFile writes cutscenes to path. A failed close is reported
// since it may drop buffered output.
func writeCutscenesFile(path string, cutscenes []*cutscene.Cutscene) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if err := writeCutscenes(f, cutscenes); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close output")
}
