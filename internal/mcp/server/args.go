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

package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/n8n-mcp/internal/jq"
	pkgerrors "github.com/tombee/n8n-mcp/pkg/errors"
	"github.com/tombee/n8n-mcp/pkg/n8n"
)

// filterArgs is embedded by tools whose result can be narrowed with jq.
type filterArgs struct {
	JQ string `json:"jq,omitempty" validate:"omitempty,jq"`
}

type listWorkflowsArgs struct {
	filterArgs
	Active *bool    `json:"active,omitempty"`
	Tags   []string `json:"tags,omitempty" validate:"omitempty,dive,required"`
	Limit  int      `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Offset int      `json:"offset,omitempty" validate:"min=0"`
}

func (a listWorkflowsArgs) query() *n8n.ListWorkflowsQuery {
	return &n8n.ListWorkflowsQuery{
		Active: a.Active,
		Tags:   a.Tags,
		Limit:  a.Limit,
		Offset: a.Offset,
	}
}

type workflowIDArgs struct {
	WorkflowID string `json:"workflowId" validate:"required"`
}

type getWorkflowArgs struct {
	filterArgs
	workflowIDArgs
}

type createWorkflowArgs struct {
	Name        string         `json:"name" validate:"required"`
	Nodes       []n8n.Node     `json:"nodes" validate:"required"`
	Connections map[string]any `json:"connections"`
	Active      *bool          `json:"active,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

func (a createWorkflowArgs) request() n8n.CreateWorkflowRequest {
	return n8n.CreateWorkflowRequest{
		Name:        a.Name,
		Nodes:       a.Nodes,
		Connections: a.Connections,
		Active:      a.Active,
		Tags:        a.Tags,
		Settings:    a.Settings,
	}
}

type updateWorkflowArgs struct {
	WorkflowID  string         `json:"workflowId" validate:"required"`
	Name        *string        `json:"name,omitempty" validate:"omitempty,min=1"`
	Nodes       []n8n.Node     `json:"nodes,omitempty"`
	Connections map[string]any `json:"connections,omitempty"`
	Active      *bool          `json:"active,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

func (a updateWorkflowArgs) request() n8n.UpdateWorkflowRequest {
	req := n8n.UpdateWorkflowRequest{
		Nodes:       a.Nodes,
		Connections: a.Connections,
		Active:      a.Active,
		Tags:        a.Tags,
		Settings:    a.Settings,
	}
	if a.Name != nil {
		req.Name = *a.Name
	}
	return req
}

type listExecutionsArgs struct {
	filterArgs
	WorkflowID  string `json:"workflowId,omitempty"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=running success error waiting canceled"`
	Limit       int    `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Offset      int    `json:"offset,omitempty" validate:"min=0"`
	IncludeData *bool  `json:"includeData,omitempty"`
}

func (a listExecutionsArgs) query() *n8n.ListExecutionsQuery {
	return &n8n.ListExecutionsQuery{
		WorkflowID:  a.WorkflowID,
		Status:      n8n.ExecutionStatus(a.Status),
		Limit:       a.Limit,
		Offset:      a.Offset,
		IncludeData: a.IncludeData,
	}
}

type executionIDArgs struct {
	ExecutionID string `json:"executionId" validate:"required"`
}

type getExecutionArgs struct {
	filterArgs
	executionIDArgs
}

type runWebhookArgs struct {
	filterArgs
	WorkflowName string            `json:"workflowName" validate:"required"`
	Data         map[string]any    `json:"data,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	Method       string            `json:"method,omitempty"`
}

// validate is shared by every handler; validator caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("jq", func(fl validator.FieldLevel) bool {
		return jqValid(fl.Field().String())
	})
	return v
}

// bindArgs decodes the tool arguments into target and validates them.
func bindArgs(request mcp.CallToolRequest, target any) error {
	if request.GetArguments() != nil {
		if err := request.BindArguments(target); err != nil {
			return &pkgerrors.ValidationError{
				Message: err.Error(),
				Hint:    "check the argument types against the tool schema",
			}
		}
	}
	if err := validate.Struct(target); err != nil {
		return validationFailed(err)
	}
	return nil
}

// validationFailed flattens validator errors into one ValidationError whose
// message reads "field: problem, field: problem".
func validationFailed(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &pkgerrors.ValidationError{Message: err.Error()}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), describe(fe)))
	}

	verr := &pkgerrors.ValidationError{Message: strings.Join(msgs, ", ")}
	if len(verrs) == 1 {
		verr.Field = verrs[0].Field()
		verr.Message = describe(verrs[0])
	}
	return verr
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must not be empty"
		}
		return "must be >= " + fe.Param()
	case "max":
		return "must be <= " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "jq":
		return "is not a valid jq expression"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func jqValid(expression string) bool {
	return jq.Validate(expression) == nil
}
