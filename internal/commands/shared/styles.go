// Copyright 2025 Tom Barlow
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

package shared

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// RenderOK prefixes msg with a green check mark.
func RenderOK(msg string) string {
	return okStyle.Render("✓") + " " + msg
}

// RenderError prefixes msg with a red cross.
func RenderError(msg string) string {
	return errStyle.Render("✗") + " " + msg
}

// RenderField renders an indented "label: value" line without a trailing
// newline.
func RenderField(label, value string) string {
	return "  " + labelStyle.Render(label+":") + " " + value
}
