// Copyright © 2025 The concordium-tools Authors
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"

	"github.com/bisgardo/concordium-tools/internal/encoder"
	"github.com/bisgardo/concordium-tools/internal/metrics"
	"github.com/bisgardo/concordium-tools/internal/msgs"
	"github.com/bisgardo/concordium-tools/internal/restapi"
	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/confutil"
	"github.com/bisgardo/concordium-tools/pkg/httpserver"
	"github.com/bisgardo/concordium-tools/pkg/log"
	"github.com/bisgardo/concordium-tools/pkg/metricsserver"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

type RC int

const (
	RC_OK   RC = 0
	RC_FAIL RC = 1
)

// Options are the command line overrides applied on top of the config file
type Options struct {
	ConfigFile string
	Port       *int
}

var running atomic.Pointer[instance]

// Run blocks until the process is signalled or Stop is called
func Run(opts Options) RC {
	i := newInstance(opts)
	if !running.CompareAndSwap(nil, i) {
		panic("already running")
	}
	return i.run()
}

func Stop() {
	if i := running.Load(); i != nil {
		i.stop()
	}
}

type stoppable interface {
	Start() error
	Stop()
}

type instance struct {
	opts Options

	ctx       context.Context
	cancelCtx context.CancelFunc
	signals   chan os.Signal
	stopped   atomic.Bool
	started   chan struct{}
	done      chan struct{}

	api           restapi.Server
	metricsServer metricsserver.MetricsServer
	debugServer   httpserver.Server
}

func newInstance(opts Options) *instance {
	i := &instance{
		opts:    opts,
		signals: make(chan os.Signal, 1),
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
	i.ctx, i.cancelCtx = context.WithCancel(log.WithLogField(context.Background(), "pid", strconv.Itoa(os.Getpid())))
	return i
}

func (i *instance) signalHandler() {
	signal.Notify(i.signals, os.Interrupt, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(i.signals)
	select {
	case sig := <-i.signals:
		log.L(i.ctx).Infof("Stopping due to signal %s", sig)
		i.stop()
	case <-i.ctx.Done():
	}
}

func (i *instance) loadConfig() (*ccdconf.EncoderConfig, error) {
	var conf ccdconf.EncoderConfig
	if i.opts.ConfigFile != "" {
		if err := ccdconf.ReadAndParseYAMLFile(i.ctx, i.opts.ConfigFile, &conf); err != nil {
			return nil, err
		}
	}
	if i.opts.Port != nil {
		conf.API.Port = i.opts.Port
	}
	return &conf, nil
}

func (i *instance) init(conf *ccdconf.EncoderConfig) (err error) {
	m := metrics.NewMetrics(i.ctx)
	enc := encoder.NewEncoder(i.ctx, conf, m)
	if i.api, err = restapi.NewServer(i.ctx, &conf.API, enc, m); err != nil {
		return i18n.WrapError(i.ctx, err, msgs.MsgBootstrapInitFailed, "api")
	}
	if i.metricsServer, err = metricsserver.NewMetricsServer(i.ctx, m.Registry(), &conf.MetricsServer); err != nil {
		return i18n.WrapError(i.ctx, err, msgs.MsgBootstrapInitFailed, "metrics server")
	}
	if confutil.Bool(conf.DebugServer.Enabled, *ccdconf.DebugServerDefaults.Enabled) {
		if i.debugServer, err = httpserver.NewDebugServer(i.ctx, &conf.DebugServer.HTTPServerConfig); err != nil {
			return i18n.WrapError(i.ctx, err, msgs.MsgBootstrapInitFailed, "debug server")
		}
	}
	return nil
}

func (i *instance) servers() map[string]stoppable {
	servers := map[string]stoppable{}
	if i.api != nil {
		servers["api"] = i.api
	}
	if i.metricsServer != nil {
		servers["metrics server"] = i.metricsServer
	}
	if i.debugServer != nil {
		servers["debug server"] = i.debugServer
	}
	return servers
}

func (i *instance) run() RC {
	defer func() {
		i.cancelCtx()
		close(i.done)
		running.Store(nil)
	}()
	go i.signalHandler()

	conf, err := i.loadConfig()
	if err != nil {
		log.L(i.ctx).Error(err.Error())
		return RC_FAIL
	}
	log.InitConfig(&conf.Log)

	// the servers are stopped even after a partial start
	defer func() {
		for _, s := range i.servers() {
			s.Stop()
		}
	}()
	err = i.init(conf)
	if err == nil {
		for name, s := range i.servers() {
			if err = s.Start(); err != nil {
				err = i18n.WrapError(i.ctx, err, msgs.MsgBootstrapStartFailed, name)
				break
			}
		}
	}
	if err != nil {
		log.L(i.ctx).Error(err.Error())
		return RC_FAIL
	}
	log.L(i.ctx).Infof("API listening on %s", i.api.Addr())
	close(i.started)

	<-i.ctx.Done()
	return RC_OK
}

func (i *instance) stop() {
	if i.stopped.CompareAndSwap(false, true) {
		i.cancelCtx()
		<-i.done
	}
}
