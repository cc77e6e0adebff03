/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package ifc

import (
	"context"
	"net/http"

	"naluscientific.com/go-nalu/pkg/board"
	"naluscientific.com/go-nalu/pkg/command"
	"naluscientific.com/go-nalu/pkg/models"
)

// Controller runs board sessions on behalf of the API.
type Controller interface {
	ListModels() []*models.Model
	InitBoard(ctx context.Context, req command.BoardRequest) error
	StartCapture(ctx context.Context, req command.CaptureRequest) (*board.Run, error)
	StopCapture(ctx context.Context, req command.BoardRequest) (*board.Run, error)
	BoardState(boardIP string) (*command.BoardState, error)
}

type ApiServer interface {
	Handler() http.Handler
	Run(ctx context.Context) error
}
