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

package command

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/imroc/req"

	"naluscientific.com/go-nalu/pkg/board"
	"naluscientific.com/go-nalu/pkg/models"
)

// ApiClient talks to a go-nalu serve instance.
type ApiClient struct {
	ApiPrefix string
}

// NewApiClient returns a client for the API listening on address (host:port).
func NewApiClient(address string) *ApiClient {
	return &ApiClient{
		ApiPrefix: fmt.Sprintf("http://%s/api", address),
	}
}

func (c *ApiClient) url(path string) string {
	return c.ApiPrefix + path
}

func checkResponse(r *req.Resp) error {
	resp := r.Response()
	if resp.StatusCode != http.StatusOK {
		return ErrApi{Status: resp.Status, Message: strings.TrimSpace(r.String())}
	}
	return nil
}

// Models lists the models known to the server.
func (c *ApiClient) Models() ([]*models.Model, error) {
	r, err := req.Get(c.url("/models"))
	if err != nil {
		return nil, err
	}
	if err := checkResponse(r); err != nil {
		return nil, err
	}
	var list []*models.Model
	if err := r.ToJSON(&list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *ApiClient) InitBoard(request BoardRequest) error {
	r, err := req.Post(c.url("/board/init"), req.BodyJSON(&request))
	if err != nil {
		return err
	}
	return checkResponse(r)
}

func (c *ApiClient) StartCapture(request CaptureRequest) (*board.Run, error) {
	return c.postRun("/readout/start", &request)
}

// StopCapture returns nil without error when the server knows no open run.
func (c *ApiClient) StopCapture(request BoardRequest) (*board.Run, error) {
	return c.postRun("/readout/stop", &request)
}

func (c *ApiClient) postRun(path string, request interface{}) (*board.Run, error) {
	r, err := req.Post(c.url(path), req.BodyJSON(request))
	if err != nil {
		return nil, err
	}
	if err := checkResponse(r); err != nil {
		return nil, err
	}
	if len(r.Bytes()) == 0 {
		return nil, nil
	}
	run := &board.Run{}
	if err := r.ToJSON(run); err != nil {
		return nil, err
	}
	if run.Board == "" {
		return nil, nil
	}
	return run, nil
}

func (c *ApiClient) BoardState(boardIP string) (*BoardState, error) {
	r, err := req.Get(c.url("/state/" + url.PathEscape(boardIP)))
	if err != nil {
		return nil, err
	}
	if err := checkResponse(r); err != nil {
		return nil, err
	}
	state := &BoardState{}
	if err := r.ToJSON(state); err != nil {
		return nil, err
	}
	return state, nil
}
