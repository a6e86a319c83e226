package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardwall/scramble/pkg/api"
	"github.com/cardwall/scramble/pkg/board"
	"github.com/cardwall/scramble/pkg/clients"
	"github.com/cardwall/scramble/pkg/log"
	"github.com/cardwall/scramble/pkg/queue"
	"github.com/cardwall/scramble/pkg/servers"
	"github.com/cardwall/scramble/pkg/workers"
)

func main() {
	boardFile := flag.String("board", "boards/ab.txt", "Board file to load")
	tcpPort := flag.Int("tcp-port", 8888, "TCP port to listen on")
	udpPort := flag.Int("udp-port", 8889, "UDP port to listen on")
	wsPort := flag.Int("ws-port", 8890, "WebSocket port to listen on")
	apiPort := flag.Int("api-port", 8891, "HTTP API port to listen on")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	b, err := board.Load(*boardFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load board: %v", err))
	}
	log.Info("Loaded %dx%d board from %s", b.Rows(), b.Cols(), *boardFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clientManager := clients.NewClientManager()
	clientMessageQueue := queue.NewInMemoryQueue()

	tcpServer := servers.NewTCPServer(servers.NewTCPServerOptions{
		ClientManager: clientManager,
		MessageQueue:  clientMessageQueue,
		Board:         b,
		Port:          *tcpPort,
	})
	udpServer := servers.NewUDPServer(servers.NewUDPServerOptions{
		ClientManager: clientManager,
		MessageQueue:  clientMessageQueue,
		Port:          *udpPort,
	})
	wsServer := servers.NewWSServer(servers.NewWSServerOptions{
		ClientManager: clientManager,
		MessageQueue:  clientMessageQueue,
		Board:         b,
		Port:          *wsPort,
	})
	go tcpServer.Start(ctx)
	go udpServer.Start(ctx)
	go wsServer.Start(ctx)

	clientEventWorker := workers.NewClientEventWorker(workers.NewClientEventWorkerOptions{
		ClientManager: clientManager,
	})
	go clientEventWorker.Start()

	dispatchWorker := workers.NewDispatchWorker(workers.NewDispatchWorkerOptions{
		Board:         b,
		ClientManager: clientManager,
		MessageQueue:  clientMessageQueue,
	})
	go dispatchWorker.Start(ctx)

	broadcastWorker := workers.NewBroadcastViewWorker(workers.NewBroadcastViewWorkerOptions{
		Board:         b,
		ClientManager: clientManager,
		UDPServer:     udpServer,
	})
	go broadcastWorker.Start(ctx)

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:  *apiPort,
		Board: b,
	})
	go apiServer.Start()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server: %v", err)
	}
}
