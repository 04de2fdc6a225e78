// /home/krylon/go/src/github.com/blicero/asclepius/backend/00_backend_main_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 18. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-07 22:31:08 krylon>

package backend

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/blicero/asclepius/common"
)

func TestMain(m *testing.M) {
	var (
		err     error
		result  int
		baseDir = time.Now().Format("/tmp/asclepius_backend_test_20060102_150405")
	)

	if err = common.SetBaseDir(baseDir); err != nil {
		fmt.Printf("Cannot set base directory to %s: %s\n",
			baseDir,
			err.Error())
		os.Exit(1)
	} else if result = m.Run(); result == 0 {
		fmt.Printf("Removing BaseDir %s\n",
			baseDir)
		_ = os.RemoveAll(baseDir)
	} else {
		fmt.Printf(">>> TEST DIRECTORY: %s\n",
			baseDir)
	}

	os.Exit(result)
} // func TestMain(m *testing.M)
