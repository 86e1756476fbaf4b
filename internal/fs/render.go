// Copyright 2024 Google LLC
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

package fs

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"
)

// renderYAML converts obj to the YAML bytes served as an object file's
// contents.
func renderYAML(obj *unstructured.Unstructured) ([]byte, error) {
	data, err := yaml.Marshal(obj.Object)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s %q to YAML: %w", obj.GetKind(), obj.GetName(), err)
	}
	return data, nil
}
