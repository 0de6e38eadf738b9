package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const KakaoBaseURL = "https://dapi.kakao.com/v2/local"

// KakaoPlaces searches the Kakao local keyword API. Kakao returns x as longitude and y as latitude,
// both as strings.
type KakaoPlaces struct {
	BaseURL string
	RESTKey string
	HTTP    *http.Client
}

func NewKakaoPlaces(restKey string) *KakaoPlaces {
	return &KakaoPlaces{BaseURL: KakaoBaseURL, RESTKey: restKey, HTTP: &http.Client{Timeout: 5 * time.Second}}
}

type kakaoDocument struct {
	PlaceName       string `json:"place_name"`
	AddressName     string `json:"address_name"`
	RoadAddressName string `json:"road_address_name"`
	X               string `json:"x"`
	Y               string `json:"y"`
}

type kakaoKeywordResponse struct {
	Documents []kakaoDocument `json:"documents"`
}

func (k *KakaoPlaces) SearchPlaces(ctx context.Context, keyword string) ([]Place, error) {
	endpoint := fmt.Sprintf("%s/search/keyword.json?%s", k.BaseURL, url.Values{"query": {keyword}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "KakaoAK "+k.RESTKey)

	res, err := k.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kakao keyword search: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("kakao keyword search: status %d: %s", res.StatusCode, body)
	}

	var out kakaoKeywordResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("kakao keyword search: decode: %w", err)
	}

	places := make([]Place, 0, len(out.Documents))
	for _, d := range out.Documents {
		lng, errX := strconv.ParseFloat(d.X, 64)
		lat, errY := strconv.ParseFloat(d.Y, 64)
		if errX != nil || errY != nil {
			continue
		}
		address := d.RoadAddressName
		if address == "" {
			address = d.AddressName
		}
		places = append(places, Place{Name: d.PlaceName, Address: address, Coordinate: Coordinate{Lat: lat, Lng: lng}})
	}
	return places, nil
}
