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

package main

import (
	"fmt"
	"strings"

	"github.com/ranwatch/ric-decision-engine/pkg/operational"
	"github.com/ranwatch/ric-decision-engine/pkg/pipeline"
)

func main() {
	// This unnamed variable forces the linker to keep all pipeline packages,
	// whose init functions fill the operational metrics registry.
	var _ *pipeline.Pipeline

	header := `
> Note: this file was automatically generated, to update execute "make docs"

# ric-decision-engine Operational Metrics

Each table below provides documentation for an exported ric-decision-engine operational metric.

	`
	fmt.Println(header)
	for _, m := range operational.GetDocumentation() {
		fmt.Printf("### %s\n", m.Name)
		fmt.Printf("| **Name** | %s | \n", m.Name)
		fmt.Printf("|:---|:---|\n")
		fmt.Printf("| **Description** | %s | \n", m.Help)
		fmt.Printf("| **Type** | %s | \n", m.Type)
		if len(m.Labels) > 0 {
			fmt.Printf("| **Labels** | %s | \n", strings.Join(m.Labels, ", "))
		}
		fmt.Printf("\n")
	}
}
