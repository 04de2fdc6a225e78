// /home/krylon/go/src/github.com/blicero/asclepius/main.go
// -*- mode: go; coding: utf-8; -*-
// Created on 10. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-08 21:02:17 krylon>

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blicero/asclepius/backend"
	"github.com/blicero/asclepius/clients/clientlib"
	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/priority"
)

func main() {
	fmt.Printf("%s %s (built %s)\n",
		common.AppName,
		common.Version,
		common.BuildStamp)

	var (
		err                         error
		daemon                      *backend.Daemon
		appDir, mode, addr, syncURL string
		noCritical                  bool
		tag, title, body            string
		prio                        int
		needReply                   bool
	)

	flag.StringVar(
		&appDir,
		"appdir",
		common.BaseDir,
		"The directory where application-specific files live")

	flag.StringVar(
		&mode,
		"mode",
		"backend",
		"One of *backend*, *queue*, *status*, *sync*, *badge*, *clear-badge*",
	)

	flag.StringVar(
		&addr,
		"address",
		fmt.Sprintf("localhost:%d", common.DefaultPort),
		"Address to either listen on (backend) or connect to (clients)",
	)

	flag.StringVar(
		&syncURL,
		"sync-url",
		"",
		"URL of the collection server (backend); found via DNS-SD if empty",
	)

	flag.BoolVar(
		&noCritical,
		"no-critical",
		false,
		"Never use the critical alert tier, even if the desktop supports it",
	)

	flag.StringVar(&tag, "tag", "", "Tag of the notification to queue")
	flag.StringVar(&title, "title", "", "Title of the notification to queue")
	flag.StringVar(&body, "body", "", "Body of the notification to queue")
	flag.IntVar(&prio, "priority", int(priority.Normal), "Priority (1-3) of the notification to queue")
	flag.BoolVar(&needReply, "need-reply", false, "Whether the notification asks the donor for a response")

	flag.Parse()

	if appDir != common.BaseDir {
		if err = common.SetBaseDir(appDir); err != nil {
			fmt.Fprintf(
				os.Stderr,
				"Cannot set application directory to %s: %s\n",
				appDir,
				err.Error())
			os.Exit(1)
		}
	}

	switch mode {
	case "backend":
		if daemon, err = backend.Summon(addr, syncURL, noCritical); err != nil {
			fmt.Fprintf(
				os.Stderr,
				"Failed to initialize backend: %s\n",
				err.Error())
			os.Exit(1)
		}

		var sigQ = make(chan os.Signal, 1)
		var ticker = time.NewTicker(time.Second * 2)

		signal.Notify(sigQ, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

		for daemon.IsAlive() {
			select {
			case sig := <-sigQ:
				fmt.Printf("Quitting on signal %s\n", sig)
				daemon.Banish() // nolint: errcheck
				os.Exit(0)
			case <-ticker.C:
				continue
			}
		}
	case "queue":
		var (
			c  *clientlib.Client
			uu string
			n  = objects.NotificationRequest{
				Tag:              tag,
				Title:            title,
				Body:             body,
				Priority:         priority.Priority(prio),
				RequiresResponse: needReply,
			}
		)

		if c, err = clientlib.NewClient(addr); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot create client: %s\n", err.Error())
			os.Exit(1)
		} else if uu, err = c.QueueNotification(&n); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot queue notification: %s\n", err.Error())
			os.Exit(1)
		}

		fmt.Printf("Queued %s\n", uu)
	case "status":
		var (
			c   *clientlib.Client
			st  *objects.QueueStatus
			cnt int
		)

		if c, err = clientlib.NewClient(addr); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot create client: %s\n", err.Error())
			os.Exit(1)
		} else if st, err = c.QueueStatus(); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot query queue status: %s\n", err.Error())
			os.Exit(1)
		} else if cnt, err = c.BadgeCount(); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot query badge: %s\n", err.Error())
			os.Exit(1)
		}

		fmt.Printf("Queue depth: %d\n", st.Depth)
		for prio, n := range st.ByPriority {
			fmt.Printf("\t%s: %d\n", prio, n)
		}
		fmt.Printf("Unread: %d\n", cnt)
	case "sync":
		var (
			c   *clientlib.Client
			res *objects.SyncResult
		)

		if c, err = clientlib.NewClient(addr); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot create client: %s\n", err.Error())
			os.Exit(1)
		} else if res, err = c.TriggerSync(); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot trigger sync: %s\n", err.Error())
			os.Exit(1)
		}

		if res.InFlight {
			fmt.Println("A sync is already in flight")
		} else {
			fmt.Printf("Synced %d, failed %d, abandoned %d\n",
				len(res.Synced),
				len(res.Failed),
				len(res.Abandoned))
		}
	case "badge":
		var (
			c   *clientlib.Client
			cnt int
		)

		if c, err = clientlib.NewClient(addr); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot create client: %s\n", err.Error())
			os.Exit(1)
		} else if cnt, err = c.BadgeCount(); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot query badge: %s\n", err.Error())
			os.Exit(1)
		}

		fmt.Printf("Unread: %d\n", cnt)
	case "clear-badge":
		var c *clientlib.Client

		if c, err = clientlib.NewClient(addr); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot create client: %s\n", err.Error())
			os.Exit(1)
		} else if err = c.BadgeClear(); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot clear badge: %s\n", err.Error())
			os.Exit(1)
		}

		fmt.Println("OK")
	default:
		fmt.Fprintf(
			os.Stderr,
			"Unknown mode %q\n",
			mode,
		)

		os.Exit(1)
	}
}
