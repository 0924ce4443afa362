package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uploadDto "anoa.com/droneanalytics/internal/modules/upload/dto"
	userDto "anoa.com/droneanalytics/internal/modules/user/dto"
)

func validViolation() uploadDto.ViolationInput {
	return uploadDto.ViolationInput{
		ID:        "v1",
		Type:      "Fire Detected",
		Timestamp: "10:00:00",
		Latitude:  12.5,
		Longitude: 45.5,
		ImageURL:  "http://x/y.jpg",
	}
}

func validUpload() uploadDto.UploadRequest {
	return uploadDto.UploadRequest{
		DroneID:    "D1",
		Date:       "2025-01-01",
		Location:   "Zone A",
		Violations: []uploadDto.ViolationInput{validViolation()},
	}
}

func TestRegistration(t *testing.T) {
	tests := []struct {
		name string
		req  userDto.RegisterRequest
		want []string
	}{
		{
			name: "valid",
			req:  userDto.RegisterRequest{Username: "bob_1", Email: "bob@x.com", Password: "Abcdef1!"},
		},
		{
			name: "everything missing",
			req:  userDto.RegisterRequest{},
			want: []string{"Email is required", "Password is required", "Username is required"},
		},
		{
			name: "short password",
			req:  userDto.RegisterRequest{Username: "bob_1", Email: "bob@x.com", Password: "Ab1!"},
			want: []string{"Password must be at least 8 characters long"},
		},
		{
			name: "no lowercase",
			req:  userDto.RegisterRequest{Username: "bob_1", Email: "bob@x.com", Password: "ABCDEF1!"},
			want: []string{"Password must contain at least one lowercase letter"},
		},
		{
			name: "no uppercase",
			req:  userDto.RegisterRequest{Username: "bob_1", Email: "bob@x.com", Password: "abcdef1!"},
			want: []string{"Password must contain at least one uppercase letter"},
		},
		{
			name: "no digit",
			req:  userDto.RegisterRequest{Username: "bob_1", Email: "bob@x.com", Password: "Abcdefg!"},
			want: []string{"Password must contain at least one number"},
		},
		{
			name: "no special character",
			req:  userDto.RegisterRequest{Username: "bob_1", Email: "bob@x.com", Password: "Abcdefg1"},
			want: []string{"Password must contain at least one special character"},
		},
		{
			name: "bad email",
			req:  userDto.RegisterRequest{Username: "bob_1", Email: "bob@x", Password: "Abcdef1!"},
			want: []string{"Please provide a valid email address"},
		},
		{
			name: "blank username",
			req:  userDto.RegisterRequest{Username: "   ", Email: "bob@x.com", Password: "Abcdef1!"},
			want: []string{"Username is required"},
		},
		{
			name: "short username after trim",
			req:  userDto.RegisterRequest{Username: " ab ", Email: "bob@x.com", Password: "Abcdef1!"},
			want: []string{"Username must be at least 3 characters"},
		},
		{
			name: "username charset",
			req:  userDto.RegisterRequest{Username: "bob-1", Email: "bob@x.com", Password: "Abcdef1!"},
			want: []string{"Username can only contain letters, numbers, and underscores"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Registration(tt.req)
			assert.Equal(t, len(tt.want) == 0, res.Valid)
			if len(tt.want) == 0 {
				assert.Empty(t, res.Errors)
				return
			}
			assert.Equal(t, tt.want, res.Errors)
		})
	}
}

func TestLoginOnlyChecksPasswordPresence(t *testing.T) {
	res := Login(userDto.LoginRequest{Email: "bob@x.com", Password: "weak"})
	assert.True(t, res.Valid)

	res = Login(userDto.LoginRequest{Email: "nope", Password: ""})
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"Please provide a valid email address", "Password is required"}, res.Errors)
}

func TestUploadValid(t *testing.T) {
	res := Upload(validUpload())
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestUploadAcceptsBoundaryCoordinates(t *testing.T) {
	req := validUpload()
	edge := validViolation()
	edge.Latitude = -90.0
	edge.Longitude = 180.0
	origin := validViolation()
	origin.Latitude = 0.0
	origin.Longitude = 0.0
	req.Violations = append(req.Violations, edge, origin)

	assert.True(t, Upload(req).Valid)
}

func TestUploadTopLevelFields(t *testing.T) {
	res := Upload(uploadDto.UploadRequest{Date: "01/01/2025", Location: " "})

	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"drone_id is required",
		"date must be in YYYY-MM-DD format",
		"location is required",
		"violations must be a non-empty array",
	}, res.Errors)
}

func TestUploadEmptyViolations(t *testing.T) {
	req := validUpload()
	req.Violations = []uploadDto.ViolationInput{}

	res := Upload(req)
	assert.Equal(t, []string{"violations must be a non-empty array"}, res.Errors)
}

func TestUploadCollectsEveryViolationErrorWithIndex(t *testing.T) {
	bad := uploadDto.ViolationInput{
		Timestamp: "10:00",
		Latitude:  91.0,
		Longitude: -180.5,
	}
	req := validUpload()
	req.Violations = append(req.Violations, bad)

	res := Upload(req)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"Violation 1: id is required",
		"Violation 1: type is required",
		"Violation 1: timestamp must be in HH:MM:SS format",
		"Violation 1: latitude must be a number between -90 and 90",
		"Violation 1: longitude must be a number between -180 and 180",
		"Violation 1: image_url is required",
	}, res.Errors)
}

func TestUploadMissingCoordinates(t *testing.T) {
	v := validViolation()
	v.Latitude = nil
	v.Longitude = nil
	req := validUpload()
	req.Violations = []uploadDto.ViolationInput{v}

	res := Upload(req)
	assert.Equal(t, []string{
		"Violation 0: latitude is required",
		"Violation 0: longitude is required",
	}, res.Errors)
}

func TestUploadReportsWrongTypesAlongsideOtherErrors(t *testing.T) {
	body := `{
		"drone_id": "",
		"date": "bad",
		"location": 7,
		"violations": [
			{"id":"v1","type":"Fire Detected","timestamp":"10:00:00","latitude":12.5,"longitude":45.5,"image_url":"http://x/y.jpg"},
			{"id":"","type":"","timestamp":"x","latitude":"north","longitude":999,"image_url":""}
		]
	}`
	var req uploadDto.UploadRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	res := Upload(req)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"drone_id is required",
		"date must be in YYYY-MM-DD format",
		"location must be a string",
		"Violation 1: id is required",
		"Violation 1: type is required",
		"Violation 1: timestamp must be in HH:MM:SS format",
		"Violation 1: latitude must be a number",
		"Violation 1: longitude must be a number between -180 and 180",
		"Violation 1: image_url is required",
	}, res.Errors)
}

func TestUploadRejectsNonStringText(t *testing.T) {
	v := validViolation()
	v.ID = 42.0
	v.Timestamp = true
	req := validUpload()
	req.Violations = []uploadDto.ViolationInput{v}

	assert.Equal(t, []string{
		"Violation 0: id must be a string",
		"Violation 0: timestamp must be a string",
	}, Upload(req).Errors)
}

func TestUploadBatchCarriesTypedValues(t *testing.T) {
	batch := validUpload().Batch()

	assert.Equal(t, "D1", batch.DroneID)
	require.Len(t, batch.Violations, 1)
	assert.Equal(t, uploadDto.ViolationRecord{
		ID:        "v1",
		Type:      "Fire Detected",
		Timestamp: "10:00:00",
		Latitude:  12.5,
		Longitude: 45.5,
		ImageURL:  "http://x/y.jpg",
	}, batch.Violations[0])
}

func TestLengthRulesCountCharacters(t *testing.T) {
	assert.Equal(t, "Password must be at least 8 characters long", PasswordProblem("Abcdé1!", true))
	assert.Equal(t, "", PasswordProblem("Abcdéf1!", true))
	assert.Equal(t, "Username must be at least 3 characters", UsernameProblem("éé"))
}
