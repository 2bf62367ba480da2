/*
 * Copyright (C) 2024 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package health

import (
	"net"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	log "github.com/sirupsen/logrus"

	"github.com/ranwatch/ric-decision-engine/pkg/config"
)

const defaultServerHost = "0.0.0.0"

type Server struct {
	handler healthcheck.Handler
	Address string
}

func (hs *Server) Serve() {
	for {
		err := http.ListenAndServe(hs.Address, hs.handler)
		log.Errorf("http.ListenAndServe error %v", err)
		time.Sleep(60 * time.Second)
	}
}

// NewHealthServer starts serving liveness and readiness probes on the
// configured port. The caller supplies the checks.
func NewHealthServer(opts *config.Options, isAlive, isReady healthcheck.Check) *Server {
	handler := healthcheck.NewHandler()
	address := net.JoinHostPort(defaultServerHost, opts.Health.Port)

	handler.AddLivenessCheck("EngineCheck", isAlive)
	handler.AddReadinessCheck("EngineCheck", isReady)

	server := &Server{
		handler: handler,
		Address: address,
	}

	go server.Serve()

	return server
}
