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

package export

import (
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"

	"github.com/ranwatch/ric-decision-engine/pkg/config"
	"github.com/ranwatch/ric-decision-engine/pkg/engine"
)

type stdoutDispatcher struct {
	format string
	out    io.Writer
}

// Dispatch prints one decision per line
func (d *stdoutDispatcher) Dispatch(decision engine.Decision) {
	if d.format == "json" {
		txt, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(decision.ToGenericMap())
		if err != nil {
			log.Errorf("cannot encode decision: %v", err)
			return
		}
		fmt.Fprintln(d.out, string(txt))
		return
	}
	fmt.Fprintf(d.out, "%s: %v\n", time.Now().Format(time.StampMilli), decision.ToGenericMap())
}

func newStdoutDispatcher(cfg *config.Export) (engine.Dispatcher, error) {
	return &stdoutDispatcher{
		format: cfg.Format,
		out:    os.Stdout,
	}, nil
}
