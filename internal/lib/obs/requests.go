package obs

import "context"

// Version is the GetVersion response.
type Version struct {
	OBSVersion          string   `json:"obsVersion"`
	OBSWebSocketVersion string   `json:"obsWebSocketVersion"`
	Platform            string   `json:"platform"`
	AvailableRequests   []string `json:"availableRequests"`
}

// Scene is one entry of GetSceneList.
type Scene struct {
	SceneName  string `json:"sceneName"`
	SceneIndex int    `json:"sceneIndex"`
}

// SceneList is the GetSceneList response.
type SceneList struct {
	CurrentProgramSceneName string  `json:"currentProgramSceneName"`
	CurrentPreviewSceneName string  `json:"currentPreviewSceneName"`
	Scenes                  []Scene `json:"scenes"`
}

// OutputStatus covers the fields shared by GetStreamStatus and GetRecordStatus.
type OutputStatus struct {
	OutputActive   bool   `json:"outputActive"`
	OutputPaused   bool   `json:"outputPaused,omitempty"`
	OutputTimecode string `json:"outputTimecode"`
	OutputDuration int64  `json:"outputDuration"`
	OutputBytes    int64  `json:"outputBytes"`
}

func (c *Client) GetVersion(ctx context.Context) (*Version, error) {
	var v Version
	if err := c.Request(ctx, "GetVersion", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) GetSceneList(ctx context.Context) (*SceneList, error) {
	var l SceneList
	if err := c.Request(ctx, "GetSceneList", nil, &l); err != nil {
		return nil, err
	}
	if l.Scenes == nil {
		l.Scenes = []Scene{}
	}
	return &l, nil
}

func (c *Client) SetCurrentProgramScene(ctx context.Context, sceneName string) error {
	return c.Request(ctx, "SetCurrentProgramScene", map[string]string{"sceneName": sceneName}, nil)
}

func (c *Client) GetStreamStatus(ctx context.Context) (*OutputStatus, error) {
	var s OutputStatus
	if err := c.Request(ctx, "GetStreamStatus", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) StartStream(ctx context.Context) error {
	return c.Request(ctx, "StartStream", nil, nil)
}

func (c *Client) StopStream(ctx context.Context) error {
	return c.Request(ctx, "StopStream", nil, nil)
}

func (c *Client) GetRecordStatus(ctx context.Context) (*OutputStatus, error) {
	var s OutputStatus
	if err := c.Request(ctx, "GetRecordStatus", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) StartRecord(ctx context.Context) error {
	return c.Request(ctx, "StartRecord", nil, nil)
}

func (c *Client) StopRecord(ctx context.Context) error {
	return c.Request(ctx, "StopRecord", nil, nil)
}
