// /home/krylon/go/src/github.com/blicero/asclepius/common/common.go
// -*- mode: go; coding: utf-8; -*-
// Created on 03. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-08 21:40:12 krylon>

// Package common provides constants and set-up routines used throughout
// the application.
package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/blicero/asclepius/logdomain"
	"github.com/blicero/krylib"
	"github.com/hashicorp/logutils"
	"github.com/odeke-em/go-uuid"
)

// Debug indicates whether to emit additional log messages and perform
// additional sanity checks.
const Debug = true

// AppName is the name of the application, Version is ... well, guess what.
const (
	AppName = "Asclepius"
	Version = "0.3.1"
)

// BuildStamp marks the time the running binary was built.
const BuildStamp = "2023-11-08 21:38:57"

// Time stamp formats used throughout the application.
const (
	TimestampFormat          = "2006-01-02 15:04:05"
	TimestampFormatMinute    = "2006-01-02 15:04"
	TimestampFormatTime      = "15:04:05"
	TimestampFormatSubSecond = "2006-01-02 15:04:05.0000 MST"
	TimestampFormatDate      = "2006-01-02"
)

// DefaultPort is the TCP port the backend listens on if no other
// address was given.
const DefaultPort = 7202

// Paths of the directories and files the application uses.
var (
	BaseDir = filepath.Join(os.Getenv("HOME"), ".asclepius.d")
	LogPath = filepath.Join(BaseDir, "asclepius.log")
	DbPath  = filepath.Join(BaseDir, "asclepius.db")
)

// SetBaseDir sets the BaseDir and related paths and attempts to create
// the directory if it does not exist already.
func SetBaseDir(path string) error {
	fmt.Printf("Setting BaseDir to %s\n", path)

	BaseDir = path
	LogPath = filepath.Join(BaseDir, "asclepius.log")
	DbPath = filepath.Join(BaseDir, "asclepius.db")

	if err := InitApp(); err != nil {
		fmt.Printf("Error initializing application environment: %s\n",
			err.Error())
		return err
	}

	return nil
} // func SetBaseDir(path string) error

// InitApp performs some basic preparations for the application to run.
// Currently, this means creating the BaseDir.
func InitApp() error {
	var (
		err    error
		exists bool
	)

	if exists, err = krylib.Fexists(BaseDir); err != nil {
		return fmt.Errorf("error checking if BaseDir %s exists: %w",
			BaseDir,
			err)
	} else if !exists {
		if err = os.MkdirAll(BaseDir, 0700); err != nil {
			return fmt.Errorf("error creating BaseDir %s: %w",
				BaseDir,
				err)
		}
	}

	return nil
} // func InitApp() error

// LogLevels are the log levels the application supports, in ascending
// order of severity.
var LogLevels = []logutils.LogLevel{
	"TRACE",
	"DEBUG",
	"INFO",
	"WARN",
	"ERROR",
	"CRITICAL",
	"CANTHAPPEN",
	"SILENT",
}

// MinLogLevel is the minimum level a message must have to be logged.
const MinLogLevel = "TRACE"

// GetLogger tries to create a Logger for the given log source.
func GetLogger(dom logdomain.ID) (*log.Logger, error) {
	var (
		err error
		fh  *os.File
	)

	if err = InitApp(); err != nil {
		return nil, fmt.Errorf("error initializing application environment: %w", err)
	}

	var name = fmt.Sprintf("%s.%s ",
		AppName,
		dom)

	if fh, err = os.OpenFile(LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600); err != nil {
		return nil, fmt.Errorf("error opening log file %s: %w",
			LogPath,
			err)
	}

	var writer = io.MultiWriter(os.Stdout, fh)

	var filter = &logutils.LevelFilter{
		Levels:   LogLevels,
		MinLevel: logutils.LogLevel(MinLogLevel),
		Writer:   writer,
	}

	var logger = log.New(filter, name, log.Ldate|log.Ltime|log.Lshortfile)

	return logger, nil
} // func GetLogger(dom logdomain.ID) (*log.Logger, error)

// GetUUID returns a fresh random UUID in string form.
func GetUUID() string {
	return uuid.NewRandom().String()
} // func GetUUID() string

// TimeEqual returns true if the two given timestamps are less than one
// second apart.
func TimeEqual(t1, t2 time.Time) bool {
	var delta = t1.Sub(t2)

	if delta < 0 {
		delta = -delta
	}

	return delta < time.Second
} // func TimeEqual(t1, t2 time.Time) bool
